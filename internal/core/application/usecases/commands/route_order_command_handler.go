package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// RouteOrderCommandHandler is the routing orchestrator's entry point. It
// loads the order, assembles the candidate pool, invokes the selected
// assignment strategy, applies the winning assignment to the order and the
// chosen agent within one transaction, records the decision in the ephemeral
// cache, and publishes the resulting status change.
//
// On any failure the transaction is rolled back and the algorithm's error is
// propagated without partial mutation of the order.
type RouteOrderCommandHandler struct {
	uowFactory       UoWFactory
	registry         *services.Registry
	decisions        ports.RoutingDecisionCache
	preferences      ports.PreferenceSource
	publisher        ports.Publisher
	defaultAlgorithm string
	logger           *slog.Logger
}

// NewRouteOrderCommandHandler creates the routing handler.
// defaultAlgorithm is used when a command names no strategy.
func NewRouteOrderCommandHandler(
	uowFactory UoWFactory,
	registry *services.Registry,
	decisions ports.RoutingDecisionCache,
	preferences ports.PreferenceSource,
	publisher ports.Publisher,
	defaultAlgorithm string,
	logger *slog.Logger,
) RouteOrderCommandHandler {
	return RouteOrderCommandHandler{
		uowFactory:       uowFactory,
		registry:         registry,
		decisions:        decisions,
		preferences:      preferences,
		publisher:        publisher,
		defaultAlgorithm: defaultAlgorithm,
		logger:           logger.With("component", "route_order_handler"),
	}
}

// Handle processes one routing command and returns the decision record.
func (h RouteOrderCommandHandler) Handle(ctx context.Context, command RouteOrderCommand) (ports.RoutingDecision, error) {
	if err := command.Validate(); err != nil {
		return ports.RoutingDecision{}, err
	}

	algorithm := command.Algorithm()
	if algorithm == "" {
		algorithm = h.defaultAlgorithm
	}

	strategy, err := h.registry.Get(algorithm)
	if err != nil {
		return ports.RoutingDecision{}, fmt.Errorf("%w: %s", err, algorithm)
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return ports.RoutingDecision{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ordersRepo := uow.OrderRepository()

	o, err := ordersRepo.Get(ctx, command.OrderID())
	if err != nil {
		return ports.RoutingDecision{}, err
	}

	pool, err := h.buildPool(ctx, uow, o)
	if err != nil {
		return ports.RoutingDecision{}, err
	}

	assignment, err := strategy.Assign(o, pool)
	if err != nil {
		return ports.RoutingDecision{}, err
	}

	previousStatus := o.Status()

	if err = o.AssignDriver(assignment.Outlet.ID(), assignment.Driver.ID(), assignment.Algorithm); err != nil {
		return ports.RoutingDecision{}, err
	}

	note := fmt.Sprintf("driver assigned by %s algorithm", assignment.Algorithm)
	if err = o.UpdateStatus(order.AssignedDriver, note, ""); err != nil {
		return ports.RoutingDecision{}, err
	}

	now := time.Now().UTC()
	o.SetEstimatedArrival(now.Add(time.Duration(assignment.EstimatedMinutes * float64(time.Minute))))

	if err = assignment.Driver.TakeDelivery(); err != nil {
		return ports.RoutingDecision{}, err
	}

	if err = uow.AgentRepository().Update(ctx, assignment.Driver); err != nil {
		return ports.RoutingDecision{}, err
	}

	if err = ordersRepo.Update(ctx, o); err != nil {
		return ports.RoutingDecision{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ports.RoutingDecision{}, err
	}

	decision := ports.RoutingDecision{
		OrderID:          o.ID(),
		Algorithm:        assignment.Algorithm,
		OutletID:         assignment.Outlet.ID(),
		DriverID:         assignment.Driver.ID(),
		Confidence:       assignment.Confidence,
		Metrics:          assignment.Metrics,
		EstimatedMinutes: assignment.EstimatedMinutes,
		DecidedAt:        now,
	}

	// The decision cache and the realtime channel are best-effort; the
	// assignment is already committed.
	if err = h.decisions.Put(ctx, decision); err != nil {
		h.logger.ErrorContext(ctx, "Failed to cache routing decision", "order_id", o.ID(), "error", err)
	}

	h.publisher.Publish(ports.OrderTopic(o.ID()), ports.OrderStatusUpdate{
		OrderID:          o.ID().String(),
		PreviousStatus:   previousStatus.String(),
		CurrentStatus:    o.Status().String(),
		Note:             note,
		Timestamp:        now,
		EstimatedArrival: o.Delivery().EstimatedArrival(),
	})

	return decision, nil
}

// buildPool snapshots the eligible outlets and their agents, with current
// loads, so strategies decide without touching the repositories.
func (h RouteOrderCommandHandler) buildPool(ctx context.Context, uow UoW, o *order.Order) (services.Pool, error) {
	outletsRepo := uow.OutletRepository()
	agentsRepo := uow.AgentRepository()

	outlets, err := outletsRepo.ListEligible(ctx)
	if err != nil {
		return services.Pool{}, err
	}

	pool := services.Pool{
		Outlets: make([]services.OutletCandidate, 0, len(outlets)),
		Now:     time.Now().UTC(),
	}

	for _, out := range outlets {
		load, countErr := outletsRepo.CountActiveOrders(ctx, out.ID())
		if countErr != nil {
			return services.Pool{}, countErr
		}

		agents, listErr := agentsRepo.ListEligible(ctx, out.ID())
		if listErr != nil {
			return services.Pool{}, listErr
		}

		candidates := make([]services.AgentCandidate, 0, len(agents))
		for _, a := range agents {
			agentLoad, loadErr := agentsRepo.CountActiveDeliveries(ctx, a.ID())
			if loadErr != nil {
				return services.Pool{}, loadErr
			}
			candidates = append(candidates, services.AgentCandidate{Agent: a, Load: agentLoad})
		}

		pool.Outlets = append(pool.Outlets, services.OutletCandidate{
			Outlet: out,
			Load:   load,
			Agents: candidates,
		})
	}

	preferredOutlet, preferredDriver, err := h.preferences.Preferred(ctx, o.CustomerID())
	if err != nil {
		// A missing preference never blocks routing.
		h.logger.WarnContext(ctx, "Failed to load customer preference", "customer_id", o.CustomerID(), "error", err)
	} else {
		pool.PreferredOutletID = preferredOutlet
		pool.PreferredDriverID = preferredDriver
	}

	return pool, nil
}
