package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/ports"
)

// SweepOverdueOrdersCommandHandler finds active deliveries whose estimated
// arrival has passed and publishes an overdue alert for each. The sweep is
// observational: it never mutates the orders it flags.
type SweepOverdueOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	publisher  ports.Publisher
	logger     *slog.Logger
}

// NewSweepOverdueOrdersCommandHandler creates the overdue sweep handler.
func NewSweepOverdueOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.Publisher,
	logger *slog.Logger,
) SweepOverdueOrdersCommandHandler {
	return SweepOverdueOrdersCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "sweep_overdue_orders_handler"),
	}
}

// Handle runs one sweep and returns how many orders were flagged.
func (h SweepOverdueOrdersCommandHandler) Handle(ctx context.Context, command SweepOverdueOrdersCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	overdue, err := uow.OrderRepository().GetOverdue(ctx, command.Now())
	if err != nil {
		return 0, err
	}

	for _, o := range overdue {
		eta := o.Delivery().EstimatedArrival()
		if eta == nil {
			continue
		}

		minutesOverdue := command.Now().Sub(*eta).Minutes()

		h.publisher.Publish(ports.OrderTopic(o.ID()), ports.DeliveryOverdue{
			OrderID:        o.ID().String(),
			OriginalETA:    *eta,
			MinutesOverdue: minutesOverdue,
		})

		h.logger.WarnContext(ctx, "Delivery overdue",
			"order_id", o.ID(), "minutes_overdue", minutesOverdue, "status", o.Status().String())
	}

	return len(overdue), nil
}
