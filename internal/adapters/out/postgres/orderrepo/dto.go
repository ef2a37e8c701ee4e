// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, handling the conversion between the domain model and the
// relational representation, with the status history and route trail stored
// as jsonb documents.
package orderrepo

import (
	"encoding/json"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Indexed by status and driver for the routing and tracking query paths.
type OrderDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID  `gorm:"type:uuid;index"`
	OutletID   *uuid.UUID `gorm:"type:uuid;index"`
	Status     string     `gorm:"index"`
	History    []byte     `gorm:"type:jsonb"`

	DriverID   *uuid.UUID `gorm:"type:uuid;index"`
	AssignedAt *time.Time
	AssignedBy string
	DriverLat  *float64
	DriverLng  *float64
	Route      []byte `gorm:"type:jsonb"`

	DestinationLat   float64
	DestinationLng   float64
	ScheduledFor     *time.Time
	EstimatedArrival *time.Time
	DeliveryAttempts int

	TotalAmount float64
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// statusChangeRecord is the jsonb shape of one status history entry. Field
// names match the read-model view so query handlers can unmarshal the column
// directly.
type statusChangeRecord struct {
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
	Note      string    `json:"note,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Automated bool      `json:"automated"`
}

// routePointRecord is the jsonb shape of one route trail entry.
type routePointRecord struct {
	Lat float64   `json:"lat"`
	Lng float64   `json:"lng"`
	At  time.Time `json:"at"`
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) (OrderDTO, error) {
	changes := aggregate.History()
	history := make([]statusChangeRecord, 0, len(changes))
	for _, change := range changes {
		history = append(history, statusChangeRecord{
			Status:    change.Status.String(),
			At:        change.At,
			Note:      change.Note,
			Actor:     change.Actor,
			Automated: change.Automated,
		})
	}

	historyJSON, err := json.Marshal(history)
	if err != nil {
		return OrderDTO{}, err
	}

	var outletID *uuid.UUID
	if id := aggregate.OutletID(); id != nil {
		raw := id.Bytes()
		outletID = &raw
	}

	dto := OrderDTO{
		ID:         aggregate.ID().Bytes(),
		CustomerID: aggregate.CustomerID().Bytes(),
		OutletID:   outletID,
		Status:     aggregate.Status().String(),
		History:    historyJSON,

		DestinationLat:   aggregate.Delivery().Destination().Lat(),
		DestinationLng:   aggregate.Delivery().Destination().Lng(),
		ScheduledFor:     aggregate.Delivery().ScheduledFor(),
		EstimatedArrival: aggregate.Delivery().EstimatedArrival(),
		DeliveryAttempts: aggregate.Delivery().Attempts(),

		TotalAmount: aggregate.TotalAmount(),
	}

	if assignment := aggregate.Assignment(); assignment != nil {
		driverID := assignment.DriverID().Bytes()
		assignedAt := assignment.AssignedAt()
		dto.DriverID = &driverID
		dto.AssignedAt = &assignedAt
		dto.AssignedBy = assignment.AssignedBy()

		if location := assignment.CurrentLocation(); location.Validate() == nil {
			lat, lng := location.Lat(), location.Lng()
			dto.DriverLat = &lat
			dto.DriverLng = &lng
		}

		trail := assignment.Route()
		route := make([]routePointRecord, 0, len(trail))
		for _, point := range trail {
			route = append(route, routePointRecord{
				Lat: point.Point.Lat(),
				Lng: point.Point.Lng(),
				At:  point.At,
			})
		}

		routeJSON, routeErr := json.Marshal(route)
		if routeErr != nil {
			return OrderDTO{}, routeErr
		}
		dto.Route = routeJSON
	}

	return dto, nil
}

// toDomain converts a database DTO back to an order aggregate using
// RestoreOrder, rebuilding the history, assignment and route trail.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	var outletID *kernel.UUID
	if dto.OutletID != nil {
		oID, outletErr := kernel.UUIDFromBytes((*dto.OutletID)[:])
		if outletErr != nil {
			return nil, outletErr
		}
		outletID = &oID
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	history, err := historyToDomain(dto.History)
	if err != nil {
		return nil, err
	}

	assignment, err := assignmentToDomain(dto)
	if err != nil {
		return nil, err
	}

	destination, err := kernel.NewGeoPoint(dto.DestinationLat, dto.DestinationLng)
	if err != nil {
		return nil, err
	}

	delivery := order.RestoreDelivery(destination, dto.ScheduledFor, dto.EstimatedArrival, dto.DeliveryAttempts)

	return order.RestoreOrder(id, customerID, outletID, status, history, assignment, delivery, dto.TotalAmount)
}

func historyToDomain(raw []byte) ([]order.StatusChange, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var records []statusChangeRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	history := make([]order.StatusChange, 0, len(records))
	for _, record := range records {
		status, err := order.StatusFromString(record.Status)
		if err != nil {
			return nil, err
		}

		history = append(history, order.StatusChange{
			Status:    status,
			At:        record.At,
			Note:      record.Note,
			Actor:     record.Actor,
			Automated: record.Automated,
		})
	}

	return history, nil
}

func assignmentToDomain(dto OrderDTO) (*order.DriverAssignment, error) {
	if dto.DriverID == nil {
		return nil, nil
	}

	driverID, err := kernel.UUIDFromBytes((*dto.DriverID)[:])
	if err != nil {
		return nil, err
	}

	var assignedAt time.Time
	if dto.AssignedAt != nil {
		assignedAt = *dto.AssignedAt
	}

	var currentLocation kernel.GeoPoint
	if dto.DriverLat != nil && dto.DriverLng != nil {
		currentLocation, err = kernel.NewGeoPoint(*dto.DriverLat, *dto.DriverLng)
		if err != nil {
			return nil, err
		}
	}

	var route []order.RoutePoint
	if len(dto.Route) > 0 {
		var records []routePointRecord
		if err = json.Unmarshal(dto.Route, &records); err != nil {
			return nil, err
		}

		route = make([]order.RoutePoint, 0, len(records))
		for _, record := range records {
			point, pointErr := kernel.NewGeoPoint(record.Lat, record.Lng)
			if pointErr != nil {
				return nil, pointErr
			}
			route = append(route, order.RoutePoint{Point: point, At: record.At})
		}
	}

	return order.RestoreDriverAssignment(driverID, assignedAt, dto.AssignedBy, currentLocation, route)
}
