package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/outlet"
)

// OutletRepository defines the persistence contract for outlet aggregates.
type OutletRepository interface {
	// Get retrieves an outlet aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*outlet.Outlet, error)

	// ListEligible retrieves all active outlets. Operating-hours eligibility
	// is evaluated in the domain against a reference time.
	ListEligible(ctx context.Context) ([]*outlet.Outlet, error)

	// CountActiveOrders returns the outlet's current load: the count of its
	// orders in non-terminal pre-dispatch statuses.
	CountActiveOrders(ctx context.Context, outletID kernel.UUID) (int, error)
}
