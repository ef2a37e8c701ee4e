package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrRouteOrderCommandIsNotConstructed = errors.New(
	"RouteOrderCommand must be created via NewRouteOrderCommand constructor",
)

// RouteOrderCommand requests a fulfillment routing decision for one order:
// which outlet prepares it and which agent delivers it.
//
// Example:
//
//	cmd, err := NewRouteOrderCommand(orderID, "availability")
//	if err != nil {
//	    return err
//	}
//	decision, err := handler.Handle(ctx, cmd)
type RouteOrderCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	algorithm string

	guard guard.ConstructorGuard
}

// NewRouteOrderCommand creates a routing command for the order. algorithm
// names the assignment strategy to use; pass "" for the configured default.
func NewRouteOrderCommand(orderID kernel.UUID, algorithm string) (RouteOrderCommand, error) {
	cmd := RouteOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderID(orderID); err != nil {
		return RouteOrderCommand{}, err
	}
	cmd.algorithm = algorithm

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RouteOrderCommand) Validate() error {
	return c.guard.Validate(ErrRouteOrderCommandIsNotConstructed)
}

// OrderID returns the order to route.
func (c RouteOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Algorithm returns the requested strategy name, "" for the default.
func (c RouteOrderCommand) Algorithm() string {
	return c.algorithm
}

func (c *RouteOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}
