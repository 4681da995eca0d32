package customer

import (
	"context"
	"fmt"

	"crm-engine/internal/pkg/apperrors"
)

// NotFoundError carries the caller-facing message for a missing customer ID.
type NotFoundError struct {
	CustomerID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No customer found with ID %d", e.CustomerID)
}

func (e *NotFoundError) Unwrap() error {
	return apperrors.ErrNotFound
}

// RequiredFieldError carries the caller-facing message for the first missing
// field detected during create validation.
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return e.Field + " is required"
}

func (e *RequiredFieldError) Unwrap() error {
	return apperrors.ErrValidation
}

// TableStore owns the persistent record table. Load reconstructs the full
// table from storage; Save overwrites storage with the given rows. There is
// no row-level access: every mutation is a whole-table read-modify-write.
type TableStore interface {
	Load(ctx context.Context) ([]Customer, error)

	Save(ctx context.Context, rows []Customer) error
}
