// Package ports defines the contracts between the core and its external
// collaborators: persistence repositories, the unit of work, the ephemeral
// routing-decision and tracking-state stores, the realtime publisher and the
// notification trigger. These interfaces enable dependency inversion and
// testability; the adapters layer implements them.
package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The full aggregate is written as one unit, serializing status-history
	// appends for a single order.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetOverdue retrieves orders whose estimated arrival has passed and
	// whose status is not terminal. Used by the overdue monitor sweep.
	GetOverdue(ctx context.Context, now time.Time) ([]*order.Order, error)

	// GetActiveWithDrivers retrieves non-terminal orders that carry a driver
	// assignment, for the active-deliveries view.
	GetActiveWithDrivers(ctx context.Context) ([]*order.Order, error)
}
