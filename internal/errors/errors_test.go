package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := ValidationError("invalid input")

	assert.Equal(t, TypeValidation, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Nil(t, err.Cause)
	assert.NotNil(t, err.Context)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Contains(t, err.Error(), "validation")
	assert.Contains(t, err.Error(), "invalid input")
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("user not found")

	assert.Equal(t, TypeNotFound, err.Type)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus())
	assert.Contains(t, err.Error(), "not_found")
}

func TestUnavailableError(t *testing.T) {
	cause := fmt.Errorf("classifier down")
	err := UnavailableError("failed to analyze emotion", cause)

	assert.Equal(t, TypeUnavailable, err.Type)
	assert.Equal(t, cause, err.Cause)
	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus())
	assert.Contains(t, err.Error(), "unavailable")
	assert.Contains(t, err.Error(), "classifier down")
}

func TestInternalError(t *testing.T) {
	cause := fmt.Errorf("database connection failed")
	err := InternalError("failed to save stats", cause)

	assert.Equal(t, TypeInternal, err.Type)
	assert.Equal(t, cause, err.Cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
	assert.Contains(t, err.Error(), "database connection failed")
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := InternalError("wrapper", cause)

	assert.ErrorIs(t, err, cause)
}

func TestWithField(t *testing.T) {
	err := ValidationError("bad value").WithField("field", "message").WithField("length", 0)

	assert.Equal(t, "message", err.Context["field"])
	assert.Equal(t, 0, err.Context["length"])
}

func TestToResponse(t *testing.T) {
	err := ValidationError("bad value").WithField("field", "message")
	resp := err.ToResponse()

	assert.Equal(t, "bad value", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, "message", resp.Context["field"])
}

func TestAsStructuredError(t *testing.T) {
	t.Run("passes through structured errors", func(t *testing.T) {
		original := NotFoundError("missing")
		got := AsStructuredError(original)
		assert.Same(t, original, got)
	})

	t.Run("wraps plain errors as internal", func(t *testing.T) {
		plain := errors.New("boom")
		got := AsStructuredError(plain)
		require.NotNil(t, got)
		assert.Equal(t, TypeInternal, got.Type)
		assert.ErrorIs(t, got, plain)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, AsStructuredError(nil))
	})
}
