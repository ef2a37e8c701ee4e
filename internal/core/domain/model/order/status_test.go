package order_test

import (
	"testing"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allStatuses() []order.Status {
	return []order.Status{
		order.Draft, order.Pending, order.Confirmed, order.Preparing,
		order.ReadyForPickup, order.AssignedDriver, order.OutForDelivery,
		order.AtLocation, order.Delivered, order.FailedDelivery,
		order.Cancelled, order.Refunded, order.Returned,
	}
}

func TestStatus_String(t *testing.T) {
	expected := map[order.Status]string{
		order.Unknown:        "unknown",
		order.Draft:          "draft",
		order.Pending:        "pending",
		order.Confirmed:      "confirmed",
		order.Preparing:      "preparing",
		order.ReadyForPickup: "ready_for_pickup",
		order.AssignedDriver: "assigned_driver",
		order.OutForDelivery: "out_for_delivery",
		order.AtLocation:     "at_location",
		order.Delivered:      "delivered",
		order.FailedDelivery: "failed_delivery",
		order.Cancelled:      "cancelled",
		order.Refunded:       "refunded",
		order.Returned:       "returned",
	}

	for status, name := range expected {
		assert.Equal(t, name, status.String())
	}

	assert.Equal(t, "unknown", order.Status(99).String())
}

func TestStatusFromString(t *testing.T) {
	t.Run("round_trip_for_all_valid_statuses", func(t *testing.T) {
		for _, status := range allStatuses() {
			parsed, err := order.StatusFromString(status.String())
			require.NoError(t, err)
			assert.Equal(t, status, parsed)
		}
	})

	t.Run("rejects_unknown_and_garbage", func(t *testing.T) {
		for _, s := range []string{"unknown", "", "DELIVERED", "in_transit"} {
			_, err := order.StatusFromString(s)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		}
	})
}

func TestStatus_Validate(t *testing.T) {
	for _, status := range allStatuses() {
		require.NoError(t, status.Validate())
	}

	require.Error(t, order.Unknown.Validate())
	require.Error(t, order.Status(99).Validate())
}

func TestStatus_IsTerminal(t *testing.T) {
	terminal := map[order.Status]bool{
		order.Delivered: true,
		order.Cancelled: true,
		order.Refunded:  true,
		order.Returned:  true,
	}

	for _, status := range allStatuses() {
		assert.Equal(t, terminal[status], status.IsTerminal(), status.String())
	}
}

func TestTerminalStatusStrings(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"delivered", "cancelled", "refunded", "returned"},
		order.TerminalStatusStrings())
}

func TestStatus_TransitionTo(t *testing.T) {
	t.Run("any_non_terminal_status_may_move_anywhere", func(t *testing.T) {
		for _, from := range allStatuses() {
			if from.IsTerminal() {
				continue
			}
			for _, to := range allStatuses() {
				next, err := from.TransitionTo(to)
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, next)
			}
		}
	})

	t.Run("backward_movement_is_allowed", func(t *testing.T) {
		next, err := order.OutForDelivery.TransitionTo(order.Preparing)
		require.NoError(t, err)
		assert.Equal(t, order.Preparing, next)
	})

	t.Run("terminal_statuses_accept_no_transitions", func(t *testing.T) {
		for _, from := range allStatuses() {
			if !from.IsTerminal() {
				continue
			}
			for _, to := range allStatuses() {
				_, err := from.TransitionTo(to)
				require.Error(t, err, "%s -> %s", from, to)
				assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
			}
		}
	})

	t.Run("invalid_target_is_rejected", func(t *testing.T) {
		_, err := order.Pending.TransitionTo(order.Unknown)
		require.Error(t, err)

		_, err = order.Pending.TransitionTo(order.Status(99))
		require.Error(t, err)
	})
}
