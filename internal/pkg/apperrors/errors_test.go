package apperrors_test

import (
	"errors"
	"testing"

	"crm-engine/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidationError(t *testing.T) {
	err := apperrors.NewValidationError("Status", "Status must be one of Prospect, Active, Inactive")

	assert.ErrorIs(t, err, apperrors.ErrValidation)

	var valErr *apperrors.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "Status", valErr.Field)
	assert.Equal(t, "Status must be one of Prospect, Active, Inactive", valErr.Message)
}

func TestValidationError_Error(t *testing.T) {
	withField := &apperrors.ValidationError{Field: "Amount", Message: "cannot be negative"}
	assert.Equal(t, "validation failed for field 'Amount': cannot be negative", withField.Error())

	withoutField := &apperrors.ValidationError{Message: "bad input"}
	assert.Equal(t, "validation failed: bad input", withoutField.Error())
}

func TestWrapStorageError(t *testing.T) {
	cause := errors.New("disk full")
	err := apperrors.WrapStorageError(cause, "failed to write record table")

	assert.ErrorIs(t, err, apperrors.ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[STORAGE_ERROR] failed to write record table", err.Error())
}

func TestWrapRemoteError(t *testing.T) {
	cause := errors.New("status 503")
	err := apperrors.WrapRemoteError(cause, "completion provider rejected the request")

	assert.ErrorIs(t, err, apperrors.ErrRemote)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[REMOTE_ERROR] completion provider rejected the request", err.Error())
}

func TestAppError_Error(t *testing.T) {
	withCode := &apperrors.AppError{Code: "STORAGE_ERROR", Message: "boom"}
	assert.Equal(t, "[STORAGE_ERROR] boom", withCode.Error())

	withoutCode := &apperrors.AppError{Message: "boom"}
	assert.Equal(t, "boom", withoutCode.Error())
}
