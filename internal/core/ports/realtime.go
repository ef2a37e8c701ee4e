package ports

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// OrderTopic returns the realtime topic carrying one order's updates.
func OrderTopic(orderID kernel.UUID) string {
	return "order:" + orderID.String()
}

// AgentTopic returns the realtime topic carrying one agent's updates.
func AgentTopic(agentID kernel.UUID) string {
	return "agent:" + agentID.String()
}

// OutboundMessage is a server-to-client realtime message. Concrete kinds
// carry their own payload shape; Kind is the discriminator on the wire.
type OutboundMessage interface {
	Kind() string
}

// OrderStatusUpdate announces a status transition on an order.
type OrderStatusUpdate struct {
	OrderID          string     `json:"orderId"`
	PreviousStatus   string     `json:"previousStatus"`
	CurrentStatus    string     `json:"currentStatus"`
	Note             string     `json:"note,omitempty"`
	Timestamp        time.Time  `json:"timestamp"`
	EstimatedArrival *time.Time `json:"estimatedArrival,omitempty"`
}

// Kind returns "order_status_update".
func (OrderStatusUpdate) Kind() string { return "order_status_update" }

// DriverLocationUpdate carries the agent's latest reported position.
type DriverLocationUpdate struct {
	OrderID          string     `json:"orderId"`
	Lat              float64    `json:"lat"`
	Lng              float64    `json:"lng"`
	Heading          *float64   `json:"heading,omitempty"`
	SpeedKmH         *float64   `json:"speed,omitempty"`
	Timestamp        time.Time  `json:"timestamp"`
	EstimatedArrival *time.Time `json:"estimatedArrival,omitempty"`
}

// Kind returns "driver_location_update".
func (DriverLocationUpdate) Kind() string { return "driver_location_update" }

// ETAUpdate announces a materially changed arrival estimate.
type ETAUpdate struct {
	OrderID          string    `json:"orderId"`
	NewETA           time.Time `json:"newETA"`
	EstimatedMinutes float64   `json:"estimatedMinutes"`
}

// Kind returns "eta_update".
func (ETAUpdate) Kind() string { return "eta_update" }

// DeliveryOverdue flags an order whose estimated arrival has passed without a
// terminal status.
type DeliveryOverdue struct {
	OrderID        string    `json:"orderId"`
	OriginalETA    time.Time `json:"originalETA"`
	MinutesOverdue float64   `json:"minutesOverdue"`
}

// Kind returns "delivery_overdue".
func (DeliveryOverdue) Kind() string { return "delivery_overdue" }

// Notification is a user-facing alert pushed alongside the structured events.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	OrderID string `json:"orderId,omitempty"`
}

// Kind returns "notification".
func (Notification) Kind() string { return "notification" }

// Publisher fans out state changes to the per-order and per-agent
// subscription topics. Delivery is at-most-once; ordering within one topic
// follows publish order. Publish never blocks on slow subscribers.
type Publisher interface {
	Publish(topic string, message OutboundMessage)
}
