// Package queries contains read-only operations over the persisted order
// state. Query handlers bypass the domain aggregates and read via SQL
// directly, returning flat read models shaped for the API layer.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetOrderTrackingQueryIsNotConstructed = errors.New(
	"GetOrderTrackingQuery must be created via NewGetOrderTrackingQuery constructor",
)

// GetOrderTrackingQuery retrieves the live tracking view of one order: its
// current status, full status history, driver assignment and arrival
// estimate.
type GetOrderTrackingQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderTrackingQuery creates a tracking query for the given order.
func NewGetOrderTrackingQuery(orderID kernel.UUID) (GetOrderTrackingQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderTrackingQuery{}, err
	}

	return GetOrderTrackingQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderTrackingQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderTrackingQueryIsNotConstructed)
}

// OrderID returns the queried order's identifier.
func (q GetOrderTrackingQuery) OrderID() kernel.UUID {
	return q.orderID
}

// StatusChangeView is one entry of the order's status history read model.
type StatusChangeView struct {
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
	Note      string    `json:"note,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Automated bool      `json:"automated"`
}

// DriverView is the assignment portion of the tracking read model. Lat and
// Lng are nil until the driver reports a first position.
type DriverView struct {
	ID         kernel.UUID
	AssignedAt time.Time
	AssignedBy string
	Lat        *float64
	Lng        *float64
}

// GetOrderTrackingQueryResponse is the full tracking read model of one order.
// Driver is nil before routing.
type GetOrderTrackingQueryResponse struct {
	ID               kernel.UUID
	Status           string
	History          []StatusChangeView
	Driver           *DriverView
	DestinationLat   float64
	DestinationLng   float64
	ScheduledFor     *time.Time
	EstimatedArrival *time.Time
	DeliveryAttempts int
}
