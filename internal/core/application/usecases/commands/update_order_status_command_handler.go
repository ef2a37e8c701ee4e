package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// UpdateOrderStatusCommandHandler applies one status transition to an order,
// appending the history entry, releasing the assigned agent on terminal
// statuses, and publishing the change to subscribers.
type UpdateOrderStatusCommandHandler struct {
	uowFactory    TrackingUoWFactory
	trackingState ports.TrackingStateStore
	notifier      ports.Notifier
	publisher     ports.Publisher
	logger        *slog.Logger
}

// statusNotifications maps lifecycle statuses to customer notification
// templates. Statuses not listed trigger no notification.
var statusNotifications = map[order.Status]string{
	order.Confirmed:      ports.TemplateOrderConfirmed,
	order.Preparing:      ports.TemplateOrderPreparing,
	order.OutForDelivery: ports.TemplateOutForDelivery,
	order.Delivered:      ports.TemplateDelivered,
	order.FailedDelivery: ports.TemplateDeliveryFailed,
}

// NewUpdateOrderStatusCommandHandler creates the status transition handler.
func NewUpdateOrderStatusCommandHandler(
	uowFactory TrackingUoWFactory,
	trackingState ports.TrackingStateStore,
	notifier ports.Notifier,
	publisher ports.Publisher,
	logger *slog.Logger,
) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{
		uowFactory:    uowFactory,
		trackingState: trackingState,
		notifier:      notifier,
		publisher:     publisher,
		logger:        logger.With("component", "update_order_status_handler"),
	}
}

// Handle processes one status transition command.
//
// A transition to a terminal status releases the assigned agent back to
// available and clears the order's tracking state. A transition to
// failed_delivery additionally registers a delivery attempt.
func (h UpdateOrderStatusCommandHandler) Handle(ctx context.Context, command UpdateOrderStatusCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ordersRepo := uow.OrderRepository()

	o, err := ordersRepo.Get(ctx, command.OrderID())
	if err != nil {
		return err
	}

	previousStatus := o.Status()

	if err = o.UpdateStatus(command.NewStatus(), command.Note(), command.Actor()); err != nil {
		return err
	}

	if command.NewStatus() == order.FailedDelivery {
		o.RegisterDeliveryAttempt()
	}

	if command.NewStatus().IsTerminal() {
		if err = h.releaseAgent(ctx, uow, o); err != nil {
			return err
		}
	}

	if err = ordersRepo.Update(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if command.NewStatus().IsTerminal() {
		if err = h.trackingState.Clear(ctx, o.ID()); err != nil {
			h.logger.WarnContext(ctx, "Failed to clear tracking state", "order_id", o.ID(), "error", err)
		}
	}

	h.publisher.Publish(ports.OrderTopic(o.ID()), ports.OrderStatusUpdate{
		OrderID:          o.ID().String(),
		PreviousStatus:   previousStatus.String(),
		CurrentStatus:    o.Status().String(),
		Note:             command.Note(),
		Timestamp:        time.Now().UTC(),
		EstimatedArrival: o.Delivery().EstimatedArrival(),
	})

	if templateKey, ok := statusNotifications[command.NewStatus()]; ok {
		data := map[string]any{
			"orderId": o.ID().String(),
			"status":  o.Status().String(),
		}
		if err = h.notifier.Notify(ctx, o.CustomerID(), templateKey, data); err != nil {
			h.logger.ErrorContext(ctx, "Failed to send notification",
				"order_id", o.ID(), "template", templateKey, "error", err)
		}
	}

	return nil
}

// releaseAgent returns the order's assigned agent to the available pool.
// Orders that reach a terminal status before routing have no agent to
// release.
func (h UpdateOrderStatusCommandHandler) releaseAgent(ctx context.Context, uow TrackingUoW, o *order.Order) error {
	assignment := o.Assignment()
	if assignment == nil {
		return nil
	}

	agentsRepo := uow.AgentRepository()

	a, err := agentsRepo.Get(ctx, assignment.DriverID())
	if err != nil {
		return err
	}

	a.CompleteDelivery()
	return agentsRepo.Update(ctx, a)
}
