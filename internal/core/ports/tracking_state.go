package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
)

// TrackingStateStore holds the ephemeral per-order tracking state: the
// set-once geofence flags and the last published ETA. Entries are keyed by
// order id, expire on a TTL, and are cleared explicitly when an order reaches
// a terminal status.
type TrackingStateStore interface {
	// Flags returns the geofence flags for the order; zero flags when the
	// order has no tracking state yet.
	Flags(ctx context.Context, orderID kernel.UUID) (services.GeofenceFlags, error)

	// MarkApproaching sets the approaching flag. Setting an already set flag
	// is a no-op.
	MarkApproaching(ctx context.Context, orderID kernel.UUID) error

	// MarkArrived sets the arrived flag. Setting an already set flag is a
	// no-op.
	MarkArrived(ctx context.Context, orderID kernel.UUID) error

	// LastETA returns the last stored ETA for the order, nil when none.
	LastETA(ctx context.Context, orderID kernel.UUID) (*time.Time, error)

	// PutETA stores a recomputed ETA.
	PutETA(ctx context.Context, orderID kernel.UUID, eta time.Time) error

	// Clear releases all tracking state for the order. Called on terminal
	// status transitions.
	Clear(ctx context.Context, orderID kernel.UUID) error
}
