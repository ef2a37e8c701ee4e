package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// Notification template keys fired on lifecycle milestones. Rendering and
// channel delivery are entirely external.
const (
	TemplateOrderConfirmed = "order_confirmed"
	TemplateOrderPreparing = "order_preparing"
	TemplateOutForDelivery = "out_for_delivery"
	TemplateApproaching    = "driver_approaching"
	TemplateArrived        = "driver_arrived"
	TemplateDelivered      = "order_delivered"
	TemplateDeliveryFailed = "delivery_failed"
)

// Notifier is the trigger contract for templated customer notifications.
// Failures are logged by callers, never allowed to fail the triggering
// operation.
type Notifier interface {
	Notify(ctx context.Context, customerID kernel.UUID, templateKey string, data map[string]any) error
}

// PreferenceSource supplies a customer's cached preferred outlet and driver
// for the customer_preference strategy. Either may be nil when the customer
// has no history.
type PreferenceSource interface {
	Preferred(ctx context.Context, customerID kernel.UUID) (outletID, driverID *kernel.UUID, err error)
}
