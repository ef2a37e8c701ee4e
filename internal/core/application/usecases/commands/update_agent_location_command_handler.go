package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// UpdateAgentLocationCommandHandler ingests one position report for an
// active delivery: it authorizes the reporter against the order's assignment,
// appends the point to the route trail, evaluates the geofence, recomputes
// the ETA and publishes the resulting realtime updates.
//
// Geofence events fire at most once per order. The approaching event promotes
// the order to the at_location status and triggers a customer notification;
// the arrived event only notifies, since delivery confirmation stays an
// explicit driver action.
type UpdateAgentLocationCommandHandler struct {
	uowFactory    TrackingUoWFactory
	trackingState ports.TrackingStateStore
	notifier      ports.Notifier
	publisher     ports.Publisher
	logger        *slog.Logger
}

// NewUpdateAgentLocationCommandHandler creates the location ingestion handler.
func NewUpdateAgentLocationCommandHandler(
	uowFactory TrackingUoWFactory,
	trackingState ports.TrackingStateStore,
	notifier ports.Notifier,
	publisher ports.Publisher,
	logger *slog.Logger,
) UpdateAgentLocationCommandHandler {
	return UpdateAgentLocationCommandHandler{
		uowFactory:    uowFactory,
		trackingState: trackingState,
		notifier:      notifier,
		publisher:     publisher,
		logger:        logger.With("component", "update_agent_location_handler"),
	}
}

// Handle processes one position report.
//
// A report for an order already in a terminal status is dropped without
// effect. A report from an agent other than the order's assigned driver is
// rejected with an unauthorized action error and leaves the order untouched.
func (h UpdateAgentLocationCommandHandler) Handle(ctx context.Context, command UpdateAgentLocationCommand) error {
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

	if o.Status().IsTerminal() {
		// Tracking ends with the order; a late tick after delivery or
		// cancellation must not grow the trail or re-fire geofence events.
		h.logger.InfoContext(ctx, "Dropped location report for completed order",
			"order_id", o.ID(), "status", o.Status())
		return nil
	}

	assignment := o.Assignment()
	if assignment == nil {
		return order.ErrNoDriverAssigned
	}

	if !assignment.DriverID().IsEqual(command.AgentID()) {
		h.logger.WarnContext(ctx, "Rejected location report from unassigned agent",
			"order_id", o.ID(), "agent_id", command.AgentID())
		return errs.NewUnauthorizedActionError(
			command.AgentID().String(),
			fmt.Sprintf("report location for order %s", o.ID()),
		)
	}

	now := time.Now().UTC()

	if err = o.RecordDriverLocation(command.Location(), now); err != nil {
		return err
	}

	flags, err := h.trackingState.Flags(ctx, o.ID())
	if err != nil {
		// Lost flags degrade to re-evaluating from scratch, never to
		// dropping the report.
		h.logger.WarnContext(ctx, "Failed to load geofence flags", "order_id", o.ID(), "error", err)
		flags = services.GeofenceFlags{}
	}

	evaluation := services.EvaluateGeofence(command.Location(), o.Delivery().Destination(), flags)

	if evaluation.Approaching {
		if err = o.UpdateStatus(order.AtLocation, "driver within approach radius", ""); err != nil {
			return err
		}
	}

	eta, minutes, etaErr := services.EstimateArrival(now, command.Location(), o.Delivery().Destination())
	if etaErr == nil {
		o.SetEstimatedArrival(eta)
	}

	if err = ordersRepo.Update(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.fireGeofenceEvents(ctx, o, evaluation)
	h.publishUpdates(ctx, command, o, now, eta, minutes, etaErr)

	return nil
}

// fireGeofenceEvents marks the fired flags and triggers the customer
// notifications for events that fired on this report. All of it is
// best-effort after the committed transaction.
func (h UpdateAgentLocationCommandHandler) fireGeofenceEvents(
	ctx context.Context,
	o *order.Order,
	evaluation services.GeofenceEvaluation,
) {
	if evaluation.Approaching {
		if err := h.trackingState.MarkApproaching(ctx, o.ID()); err != nil {
			h.logger.ErrorContext(ctx, "Failed to mark approaching", "order_id", o.ID(), "error", err)
		}

		h.notify(ctx, o, ports.TemplateApproaching, evaluation.DistanceKm)
	}

	if evaluation.Arrived {
		if err := h.trackingState.MarkArrived(ctx, o.ID()); err != nil {
			h.logger.ErrorContext(ctx, "Failed to mark arrived", "order_id", o.ID(), "error", err)
		}

		h.notify(ctx, o, ports.TemplateArrived, evaluation.DistanceKm)
	}
}

// publishUpdates pushes the location tick to the order and agent topics and,
// when the recomputed ETA moved materially, an ETA update. The materiality
// gate compares against the last published ETA so small drifts accumulate
// until they cross the threshold.
func (h UpdateAgentLocationCommandHandler) publishUpdates(
	ctx context.Context,
	command UpdateAgentLocationCommand,
	o *order.Order,
	now time.Time,
	eta time.Time,
	minutes float64,
	etaErr error,
) {
	update := ports.DriverLocationUpdate{
		OrderID:          o.ID().String(),
		Lat:              command.Location().Lat(),
		Lng:              command.Location().Lng(),
		Heading:          command.Heading(),
		SpeedKmH:         command.SpeedKmH(),
		Timestamp:        now,
		EstimatedArrival: o.Delivery().EstimatedArrival(),
	}

	h.publisher.Publish(ports.OrderTopic(o.ID()), update)
	h.publisher.Publish(ports.AgentTopic(command.AgentID()), update)

	if etaErr != nil {
		return
	}

	lastPublished, err := h.trackingState.LastETA(ctx, o.ID())
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to load last published ETA", "order_id", o.ID(), "error", err)
	}

	if !services.IsMaterialETAChange(lastPublished, eta) {
		return
	}

	if err = h.trackingState.PutETA(ctx, o.ID(), eta); err != nil {
		h.logger.ErrorContext(ctx, "Failed to store published ETA", "order_id", o.ID(), "error", err)
	}

	h.publisher.Publish(ports.OrderTopic(o.ID()), ports.ETAUpdate{
		OrderID:          o.ID().String(),
		NewETA:           eta,
		EstimatedMinutes: minutes,
	})
}

func (h UpdateAgentLocationCommandHandler) notify(ctx context.Context, o *order.Order, templateKey string, distanceKm float64) {
	data := map[string]any{
		"orderId":    o.ID().String(),
		"distanceKm": distanceKm,
	}

	if err := h.notifier.Notify(ctx, o.CustomerID(), templateKey, data); err != nil {
		h.logger.ErrorContext(ctx, "Failed to send notification",
			"order_id", o.ID(), "template", templateKey, "error", err)
	}
}
