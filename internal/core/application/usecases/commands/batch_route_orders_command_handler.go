package commands

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// BatchRouteResult is the per-order outcome of a batch routing call.
// Exactly one of Decision and Err is set.
type BatchRouteResult struct {
	OrderID  kernel.UUID
	Decision *ports.RoutingDecision
	Err      error
}

// BatchRouteOrdersCommandHandler routes a set of orders by invoking the
// single-order handler per id, isolating failures so the result list always
// matches the request list in length and order.
type BatchRouteOrdersCommandHandler struct {
	routeHandler RouteOrderCommandHandler
}

// NewBatchRouteOrdersCommandHandler creates the batch routing handler.
func NewBatchRouteOrdersCommandHandler(routeHandler RouteOrderCommandHandler) BatchRouteOrdersCommandHandler {
	return BatchRouteOrdersCommandHandler{routeHandler: routeHandler}
}

// Handle routes every order in the batch. The returned slice has one entry
// per requested order id, in request order; a failed order carries its error
// while the rest of the batch proceeds.
func (h BatchRouteOrdersCommandHandler) Handle(ctx context.Context, command BatchRouteOrdersCommand) ([]BatchRouteResult, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	results := make([]BatchRouteResult, 0, len(command.OrderIDs()))

	for _, orderID := range command.OrderIDs() {
		cmd, err := NewRouteOrderCommand(orderID, command.Algorithm())
		if err != nil {
			results = append(results, BatchRouteResult{OrderID: orderID, Err: err})
			continue
		}

		decision, err := h.routeHandler.Handle(ctx, cmd)
		if err != nil {
			results = append(results, BatchRouteResult{OrderID: orderID, Err: err})
			continue
		}

		d := decision
		results = append(results, BatchRouteResult{OrderID: orderID, Decision: &d})
	}

	return results, nil
}
