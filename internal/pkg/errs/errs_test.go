package errs_test

import (
	"errors"
	"testing"

	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderId", "123")

		assert.Equal(t, "orderId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: orderId is 123", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := errs.NewObjectNotFoundErrorWithCause("orderId", "123", cause)

		assert.Equal(t, "orderId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: orderId is 123 (cause: database connection failed)",
			err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("Error with different ID types", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("agentId", 456)
		assert.Equal(t, "object not found: agentId is 456", err.Error())
	})

	t.Run("errors.Is matches sentinel", func(t *testing.T) {
		var err error = errs.NewObjectNotFoundError("outletId", "abc")
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("NewValueIsInvalidError", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("status")

		assert.Equal(t, "status", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: status", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("NewValueIsInvalidErrorWithCause", func(t *testing.T) {
		cause := errors.New("invalid format")
		err := errs.NewValueIsInvalidErrorWithCause("status", cause)

		assert.Equal(t, "status", err.ParamName)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is invalid: status (cause: invalid format)", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("newlines are collapsed", func(t *testing.T) {
		cause := errors.New("line one\nline two")
		err := errs.NewValueIsInvalidErrorWithCause("payload", cause)
		assert.Equal(t, "value is invalid: payload (cause: line one line two)", err.Error())
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("NewValueIsOutOfRangeError", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("latitude", 91.0, -90.0, 90.0)

		assert.Equal(t, "latitude", err.ParamName)
		assert.Equal(t, 91.0, err.Value)
		assert.Equal(t, -90.0, err.Min)
		assert.Equal(t, 90.0, err.Max)
		require.NoError(t, err.Cause)
		assert.Equal(t,
			"value is out of range: 91 is latitude, min value is -90, max value is 90",
			err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})

	t.Run("NewValueIsOutOfRangeErrorWithCause", func(t *testing.T) {
		cause := errors.New("validation failed")
		err := errs.NewValueIsOutOfRangeErrorWithCause("speed", -5, 0, 200, cause)

		assert.Equal(t, "speed", err.ParamName)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"value is out of range: -5 is speed, min value is 0, max value is 200 (cause: validation failed)",
			err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})
}

func TestValueIsRequiredError(t *testing.T) {
	t.Run("NewValueIsRequiredError", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("orderId")

		assert.Equal(t, "orderId", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is required: orderId", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})

	t.Run("NewValueIsRequiredErrorWithCause", func(t *testing.T) {
		cause := errors.New("field missing in request body")
		err := errs.NewValueIsRequiredErrorWithCause("destination", cause)

		assert.Equal(t, "destination", err.ParamName)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"value is required: destination (cause: field missing in request body)",
			err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})
}

func TestUnauthorizedActionError(t *testing.T) {
	t.Run("NewUnauthorizedActionError", func(t *testing.T) {
		err := errs.NewUnauthorizedActionError("agent-42", "report location for order 7")

		assert.Equal(t, "agent-42", err.Actor)
		assert.Equal(t, "report location for order 7", err.Action)
		require.NoError(t, err.Cause)
		assert.Equal(t,
			"action is not authorized: report location for order 7 by agent-42",
			err.Error())
		assert.Equal(t, errs.ErrUnauthorizedAction, err.Unwrap())
	})

	t.Run("NewUnauthorizedActionErrorWithCause", func(t *testing.T) {
		cause := errors.New("token expired")
		err := errs.NewUnauthorizedActionErrorWithCause("customer-1", "track order", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"action is not authorized: track order by customer-1 (cause: token expired)",
			err.Error())
		assert.Equal(t, errs.ErrUnauthorizedAction, err.Unwrap())
	})
}
