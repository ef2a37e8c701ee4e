package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveDeliveriesQueryHandler lists in-flight deliveries from the
// database: assigned, non-terminal orders with their drivers' last known
// positions.
type GetActiveDeliveriesQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveDeliveriesQueryHandler creates a handler for active-delivery
// queries.
func NewGetActiveDeliveriesQueryHandler(db *gorm.DB) GetActiveDeliveriesQueryHandler {
	return GetActiveDeliveriesQueryHandler{db: db}
}

// Handle executes the query. Results are sorted by estimated arrival so the
// most urgent deliveries come first; orders without an estimate sort last.
func (h GetActiveDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetActiveDeliveriesQuery,
) ([]GetActiveDeliveriesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	deliveries := make([]GetActiveDeliveriesQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			driver_id,
			driver_lat,
			driver_lng,
			destination_lat,
			destination_lng,
			estimated_arrival
		FROM orders
		WHERE driver_id IS NOT NULL
		  AND status NOT IN ?
		ORDER BY estimated_arrival ASC NULLS LAST, id
	`, order.TerminalStatusStrings()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			delivery GetActiveDeliveriesQueryResponse
			id       uuid.UUID
			driverID uuid.UUID
		)

		err = rows.Scan(
			&id,
			&delivery.Status,
			&driverID,
			&delivery.DriverLat,
			&delivery.DriverLng,
			&delivery.DestinationLat,
			&delivery.DestinationLng,
			&delivery.EstimatedArrival,
		)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		delivery.OrderID = orderID

		dID, idErr := kernel.UUIDFromBytes(driverID[:])
		if idErr != nil {
			return nil, idErr
		}
		delivery.DriverID = dID

		deliveries = append(deliveries, delivery)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return deliveries, nil
}
