package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficientStockMessage(t *testing.T) {
	err := NewInsufficientStock("BRG-6204", 5, 8)

	assert.Equal(t, "insufficient stock for BRG-6204: available 5, required 8", err.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, "BRG-6204", err.Details["part_no"])
	assert.Equal(t, int64(5), err.Details["available"])
	assert.Equal(t, int64(8), err.Details["required"])
}

func TestAsAppError_WrappedChain(t *testing.T) {
	inner := NewNotFound("product", "BRG-6204")
	wrapped := fmt.Errorf("load product: %w", inner)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)
	assert.True(t, IsNotFound(wrapped))
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("bad input"), http.StatusBadRequest},
		{"invalid quantity", NewInvalidQuantity(0), http.StatusBadRequest},
		{"insufficient stock", NewInsufficientStock("X", 0, 1), http.StatusUnprocessableEntity},
		{"empty transaction", NewEmptyTransaction(), http.StatusUnprocessableEntity},
		{"not found", NewNotFound("product", "x"), http.StatusNotFound},
		{"duplicate", NewDuplicate("product", "part_no", "x"), http.StatusConflict},
		{"duplicate line", NewDuplicateLineProduct("x"), http.StatusConflict},
		{"database", NewDatabase(errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.err))
		})
	}
}

func TestErrorString(t *testing.T) {
	err := NewDatabase(errors.New("connection refused"))
	assert.Contains(t, err.Error(), CodeDatabase)
	assert.Contains(t, err.Error(), "connection refused")

	bare := NewEmptyTransaction()
	assert.Equal(t, "EMPTY_TRANSACTION: a transaction must have at least one detail line", bare.Error())
}

func TestWithDetailAndCause(t *testing.T) {
	cause := errors.New("root")
	err := NewValidation("bad field").
		WithDetail("field", "code").
		WithCause(cause)

	assert.Equal(t, "code", err.Details["field"])
	assert.True(t, errors.Is(err, cause))
}
