package customer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"crm-engine/internal/event"
	"crm-engine/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

const inputValidationPassed = "Input validation passed"

// NewCustomerInput carries the fields required to create a record. Amount is
// a pointer so that an absent amount is distinguishable from an explicit zero.
type NewCustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Status    string
	Amount    *decimal.Decimal
}

// CustomerUpdate is a partial update: only non-nil fields are applied. The
// field set is closed, so there is no notion of an unrecognized update key.
type CustomerUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Status    *string
	Amount    *decimal.Decimal
}

type RecordService interface {
	Snapshot(ctx context.Context) []Customer
	AddCustomer(ctx context.Context, input NewCustomerInput) (*Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, updates CustomerUpdate) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
	SearchCustomers(ctx context.Context, query string) []Customer
}

var _ RecordService = (*recordService)(nil)

type recordService struct {
	store  TableStore
	pub    event.Publisher
	logger *slog.Logger
}

func NewRecordService(store TableStore, publisher event.Publisher, logger *slog.Logger) RecordService {
	if store == nil {
		panic("table store cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewRecordService, using default stderr handler")
	}

	if publisher == nil {
		publisher = event.NewNoopPublisher()
	}

	return &recordService{
		store:  store,
		pub:    publisher,
		logger: logger.With(slog.String("component", "recordService")),
	}
}

func NewCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID: cust.CustomerID,
		FirstName:  cust.FirstName,
		LastName:   cust.LastName,
		Email:      cust.Email,
		Phone:      cust.Phone,
		Status:     string(cust.Status),
		Amount:     cust.Amount.String(),
	}
}

// Snapshot reconstructs the record table from storage. Storage trouble is
// reported and swallowed: the caller always receives a renderable table,
// possibly empty.
func (s *recordService) Snapshot(ctx context.Context) []Customer {
	rows, err := s.store.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load record table, continuing with empty table", slog.Any("error", err))
		return []Customer{}
	}
	if rows == nil {
		rows = []Customer{}
	}
	return rows
}

func (s *recordService) AddCustomer(ctx context.Context, input NewCustomerInput) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to add new customer")

	// First missing field wins; the order matches the declared schema.
	if strings.TrimSpace(input.FirstName) == "" {
		s.logger.WarnContext(ctx, "Validation failed: First Name is empty")
		return nil, &RequiredFieldError{Field: ColumnFirstName}
	}
	if strings.TrimSpace(input.LastName) == "" {
		s.logger.WarnContext(ctx, "Validation failed: Last Name is empty")
		return nil, &RequiredFieldError{Field: ColumnLastName}
	}
	if strings.TrimSpace(input.Email) == "" {
		s.logger.WarnContext(ctx, "Validation failed: Email is empty")
		return nil, &RequiredFieldError{Field: ColumnEmail}
	}
	if strings.TrimSpace(input.Phone) == "" {
		s.logger.WarnContext(ctx, "Validation failed: Phone is empty")
		return nil, &RequiredFieldError{Field: ColumnPhone}
	}
	if strings.TrimSpace(input.Status) == "" {
		s.logger.WarnContext(ctx, "Validation failed: Status is empty")
		return nil, &RequiredFieldError{Field: ColumnStatus}
	}
	if input.Amount == nil {
		s.logger.WarnContext(ctx, "Validation failed: Amount is missing")
		return nil, &RequiredFieldError{Field: ColumnAmount}
	}

	status, ok := ParseStatus(strings.TrimSpace(input.Status))
	if !ok {
		s.logger.WarnContext(ctx, "Validation failed: unknown status", slog.String("status", input.Status))
		return nil, apperrors.NewValidationError(ColumnStatus, "Status must be one of Prospect, Active, Inactive")
	}
	if input.Amount.IsNegative() {
		s.logger.WarnContext(ctx, "Validation failed: negative amount", slog.String("amount", input.Amount.String()))
		return nil, apperrors.NewValidationError(ColumnAmount, "Amount cannot be negative")
	}
	s.logger.InfoContext(ctx, inputValidationPassed)

	rows := s.Snapshot(ctx)

	// IDs come from max(existing)+1 on the freshly loaded table, not from a
	// persistent counter: deleting the highest ID and adding again reuses it.
	newID := int64(1)
	for _, row := range rows {
		if row.CustomerID >= newID {
			newID = row.CustomerID + 1
		}
	}

	cust := Customer{
		CustomerID: newID,
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Email:      strings.TrimSpace(input.Email),
		Phone:      strings.TrimSpace(input.Phone),
		Status:     status,
		Amount:     *input.Amount,
	}
	rows = append(rows, cust)

	s.logger.InfoContext(ctx, "Calling store Save", slog.Int64("customerID", newID))
	if err := s.store.Save(ctx, rows); err != nil {
		s.logger.ErrorContext(ctx, "Store failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	createdEvent := event.CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(&cust),
	}
	if pubErr := s.pub.PublishCustomerCreated(ctx, createdEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer added, but failed to publish creation event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Customer added successfully", slog.Int64("customerID", newID))
	return &cust, nil
}

func (s *recordService) UpdateCustomer(ctx context.Context, customerID int64, updates CustomerUpdate) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to update customer", slog.Int64("customerID", customerID))

	var status *Status
	if updates.Status != nil {
		parsed, ok := ParseStatus(strings.TrimSpace(*updates.Status))
		if !ok {
			s.logger.WarnContext(ctx, "Validation failed: unknown status", slog.String("status", *updates.Status))
			return nil, apperrors.NewValidationError(ColumnStatus, "Status must be one of Prospect, Active, Inactive")
		}
		status = &parsed
	}
	if updates.Amount != nil && updates.Amount.IsNegative() {
		s.logger.WarnContext(ctx, "Validation failed: negative amount", slog.String("amount", updates.Amount.String()))
		return nil, apperrors.NewValidationError(ColumnAmount, "Amount cannot be negative")
	}
	s.logger.InfoContext(ctx, inputValidationPassed)

	rows := s.Snapshot(ctx)

	// Uniqueness means at most one match, but the mutation is defined over all
	// matching rows so a damaged table still behaves deterministically.
	var updated *Customer
	for i := range rows {
		if rows[i].CustomerID != customerID {
			continue
		}
		if updates.FirstName != nil {
			rows[i].FirstName = *updates.FirstName
		}
		if updates.LastName != nil {
			rows[i].LastName = *updates.LastName
		}
		if updates.Email != nil {
			rows[i].Email = *updates.Email
		}
		if updates.Phone != nil {
			rows[i].Phone = *updates.Phone
		}
		if status != nil {
			rows[i].Status = *status
		}
		if updates.Amount != nil {
			rows[i].Amount = *updates.Amount
		}
		if updated == nil {
			row := rows[i]
			updated = &row
		}
	}
	if updated == nil {
		s.logger.WarnContext(ctx, "Customer not found for update", slog.Int64("customerID", customerID))
		return nil, &NotFoundError{CustomerID: customerID}
	}

	s.logger.InfoContext(ctx, "Calling store Save")
	if err := s.store.Save(ctx, rows); err != nil {
		s.logger.ErrorContext(ctx, "Store failed to save updated customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save updated customer %d: %w", customerID, err)
	}

	updatedEvent := event.CustomerUpdatedEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(updated),
	}
	if pubErr := s.pub.PublishCustomerUpdated(ctx, updatedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer updated, but failed to publish update event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Customer updated successfully", slog.Int64("customerID", customerID))
	return updated, nil
}

func (s *recordService) DeleteCustomer(ctx context.Context, customerID int64) error {
	s.logger.InfoContext(ctx, "Attempting to delete customer", slog.Int64("customerID", customerID))

	rows := s.Snapshot(ctx)

	kept := make([]Customer, 0, len(rows))
	var removed *Customer
	for _, row := range rows {
		if row.CustomerID == customerID {
			if removed == nil {
				r := row
				removed = &r
			}
			continue
		}
		kept = append(kept, row)
	}
	if removed == nil {
		s.logger.WarnContext(ctx, "Customer not found for delete", slog.Int64("customerID", customerID))
		return &NotFoundError{CustomerID: customerID}
	}

	s.logger.InfoContext(ctx, "Calling store Save", slog.Int("remaining", len(kept)))
	if err := s.store.Save(ctx, kept); err != nil {
		s.logger.ErrorContext(ctx, "Store failed to save table after delete", slog.Any("error", err))
		return fmt.Errorf("failed to save table after deleting customer %d: %w", customerID, err)
	}

	deletedEvent := event.CustomerDeletedEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(removed),
	}
	if pubErr := s.pub.PublishCustomerDeleted(ctx, deletedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer deleted, but failed to publish deletion event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Customer deleted successfully", slog.Int64("customerID", customerID))
	return nil
}

func (s *recordService) SearchCustomers(ctx context.Context, query string) []Customer {
	rows := s.Snapshot(ctx)
	matches := Search(rows, query)
	s.logger.InfoContext(ctx, "Search completed", slog.String("query", query), slog.Int("matches", len(matches)))
	return matches
}
