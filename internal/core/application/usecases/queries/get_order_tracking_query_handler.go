package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderTrackingQueryHandler reads the tracking view of one order straight
// from the orders table, including the jsonb status history.
type GetOrderTrackingQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderTrackingQueryHandler creates a handler for tracking queries.
func NewGetOrderTrackingQueryHandler(db *gorm.DB) GetOrderTrackingQueryHandler {
	return GetOrderTrackingQueryHandler{db: db}
}

// Handle executes the tracking query. Returns an object-not-found error when
// the order does not exist.
func (h GetOrderTrackingQueryHandler) Handle(
	ctx context.Context,
	query GetOrderTrackingQuery,
) (GetOrderTrackingQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			history,
			driver_id,
			assigned_at,
			assigned_by,
			driver_lat,
			driver_lng,
			destination_lat,
			destination_lng,
			scheduled_for,
			estimated_arrival,
			delivery_attempts
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	var (
		response   GetOrderTrackingQueryResponse
		id         uuid.UUID
		history    []byte
		driverID   *uuid.UUID
		assignedAt *time.Time
		assignedBy *string
		driverLat  *float64
		driverLng  *float64
	)

	err := row.Scan(
		&id,
		&response.Status,
		&history,
		&driverID,
		&assignedAt,
		&assignedBy,
		&driverLat,
		&driverLng,
		&response.DestinationLat,
		&response.DestinationLng,
		&response.ScheduledFor,
		&response.EstimatedArrival,
		&response.DeliveryAttempts,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetOrderTrackingQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return GetOrderTrackingQueryResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetOrderTrackingQueryResponse{}, err
	}
	response.ID = orderID

	if len(history) > 0 {
		if err = json.Unmarshal(history, &response.History); err != nil {
			return GetOrderTrackingQueryResponse{}, err
		}
	}

	if driverID != nil {
		dID, idErr := kernel.UUIDFromBytes((*driverID)[:])
		if idErr != nil {
			return GetOrderTrackingQueryResponse{}, idErr
		}

		driver := DriverView{
			ID:  dID,
			Lat: driverLat,
			Lng: driverLng,
		}
		if assignedAt != nil {
			driver.AssignedAt = *assignedAt
		}
		if assignedBy != nil {
			driver.AssignedBy = *assignedBy
		}
		response.Driver = &driver
	}

	return response, nil
}
