package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAppError(t *testing.T) {
	wrapped := fmt.Errorf("loading sale: %w", NewNotFoundError("Sale"))
	appErr := GetAppError(wrapped)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "Sale not found", appErr.Message)
	assert.True(t, IsAppError(wrapped))

	plain := GetAppError(errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, plain.Code)
	assert.Equal(t, "Internal server error", plain.Message)
	assert.False(t, IsAppError(errors.New("x")))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError([]FieldError{{Field: "quantity", Message: "must be greater than 0"}})
	assert.Equal(t, http.StatusUnprocessableEntity, err.Code)
	assert.Len(t, err.Errors, 1)
}
