package order

import (
	"fmt"
	"time"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// The machine is deliberately permissive: any non-terminal status may
// transition to any other status. This mirrors how back-office overrides work
// in practice (an operator can push an order back to Preparing after a failed
// hand-off) and is documented as an intentional simplification. The one hard
// gate is that terminal statuses accept no further transitions.
//
// Happy path:
//
//	Draft → Pending → Confirmed → Preparing → ReadyForPickup →
//	AssignedDriver → OutForDelivery → AtLocation → Delivered
//
// Side branches: FailedDelivery → Returned; Cancelled and Refunded are
// reachable from any non-terminal status.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Draft is an order still being composed by the customer.
	Draft

	// Pending is a placed order awaiting confirmation.
	Pending

	// Confirmed is an accepted order ready for fulfillment routing.
	Confirmed

	// Preparing means the outlet is preparing the order.
	Preparing

	// ReadyForPickup means the order awaits its driver at the outlet.
	ReadyForPickup

	// AssignedDriver means a delivery agent has been selected for the order.
	AssignedDriver

	// OutForDelivery means the agent is en route to the customer.
	OutForDelivery

	// AtLocation means the agent is within the approach geofence of the
	// delivery point.
	AtLocation

	// Delivered is the successful terminal status.
	Delivered

	// FailedDelivery means a delivery attempt failed; the order moves on to
	// Returned or is retried.
	FailedDelivery

	// Cancelled is the terminal status for orders withdrawn before delivery.
	Cancelled

	// Refunded is the terminal status for orders reimbursed after the fact.
	Refunded

	// Returned is the terminal status for orders brought back to the outlet.
	Returned
)

// getStatusStrings returns the wire/storage representation of every status.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Draft:          "draft",
		Pending:        "pending",
		Confirmed:      "confirmed",
		Preparing:      "preparing",
		ReadyForPickup: "ready_for_pickup",
		AssignedDriver: "assigned_driver",
		OutForDelivery: "out_for_delivery",
		AtLocation:     "at_location",
		Delivered:      "delivered",
		FailedDelivery: "failed_delivery",
		Cancelled:      "cancelled",
		Refunded:       "refunded",
		Returned:       "returned",
	}
}

// getValidStatusStrings returns only valid statuses, for validation.
func getValidStatusStrings() map[Status]string {
	strings := getStatusStrings()
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	delete(strings, Unknown)
	return strings
}

// StatusFromString parses the snake_case representation of a status.
// Returns an error for unrecognized values.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that the Status value is one of the defined statuses.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the snake_case name of the status, or "unknown" for invalid
// values. Implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status ends the order lifecycle.
// No transition, tracking update or reassignment is allowed past a terminal
// status; consumers use it as the signal to release per-order tracking state.
func (s Status) IsTerminal() bool {
	switch s {
	case Delivered, Cancelled, Refunded, Returned:
		return true
	default:
		return false
	}
}

// TerminalStatusStrings returns the storage names of the terminal statuses,
// for use in repository filters.
func TerminalStatusStrings() []string {
	return []string{
		Delivered.String(),
		Cancelled.String(),
		Refunded.String(),
		Returned.String(),
	}
}

// TransitionTo validates a transition from s to next. Any movement between
// non-terminal statuses is permitted; transitions out of a terminal status are
// rejected.
func (s Status) TransitionTo(next Status) (Status, error) {
	if err := next.Validate(); err != nil {
		return Unknown, err
	}

	if s.IsTerminal() {
		return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is terminal and cannot transition to %s", s, next))
	}

	return next, nil
}

// StatusChange is one append-only entry in an order's status history.
// Automated is true for transitions performed by the system itself
// (geofence promotions, routing) rather than a named actor.
type StatusChange struct {
	Status    Status
	At        time.Time
	Note      string
	Actor     string
	Automated bool
}
