package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetActiveDeliveriesQueryIsNotConstructed = errors.New(
	"GetActiveDeliveriesQuery must be created via NewGetActiveDeliveriesQuery constructor",
)

// GetActiveDeliveriesQuery retrieves every non-terminal order that carries a
// driver assignment, for the operations dashboard.
type GetActiveDeliveriesQuery struct {
	guard guard.ConstructorGuard
}

// NewGetActiveDeliveriesQuery creates a parameterless active-deliveries query.
func NewGetActiveDeliveriesQuery() GetActiveDeliveriesQuery {
	return GetActiveDeliveriesQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetActiveDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveDeliveriesQueryIsNotConstructed)
}

// GetActiveDeliveriesQueryResponse is one in-flight delivery. DriverLat and
// DriverLng are nil until the driver's first position report.
type GetActiveDeliveriesQueryResponse struct {
	OrderID          kernel.UUID
	Status           string
	DriverID         kernel.UUID
	DriverLat        *float64
	DriverLng        *float64
	DestinationLat   float64
	DestinationLng   float64
	EstimatedArrival *time.Time
}
