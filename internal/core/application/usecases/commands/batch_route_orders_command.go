package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrBatchRouteOrdersCommandIsNotConstructed = errors.New(
		"BatchRouteOrdersCommand must be created via NewBatchRouteOrdersCommand constructor",
	)
	ErrOrderIDsAreRequired = errors.New("at least one order id is required")
)

// BatchRouteOrdersCommand requests routing for a set of orders at once.
// Failures are isolated per order; one order's failure never aborts the rest
// of the batch.
type BatchRouteOrdersCommand struct { //nolint:recvcheck //using for validation
	orderIDs  []kernel.UUID
	algorithm string

	guard guard.ConstructorGuard
}

// NewBatchRouteOrdersCommand creates a batch routing command.
// algorithm applies to every order in the batch; "" selects the default.
func NewBatchRouteOrdersCommand(orderIDs []kernel.UUID, algorithm string) (BatchRouteOrdersCommand, error) {
	cmd := BatchRouteOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderIDs(orderIDs); err != nil {
		return BatchRouteOrdersCommand{}, err
	}
	cmd.algorithm = algorithm

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c BatchRouteOrdersCommand) Validate() error {
	return c.guard.Validate(ErrBatchRouteOrdersCommandIsNotConstructed)
}

// OrderIDs returns the orders to route, in batch order.
func (c BatchRouteOrdersCommand) OrderIDs() []kernel.UUID {
	return c.orderIDs
}

// Algorithm returns the requested strategy name, "" for the default.
func (c BatchRouteOrdersCommand) Algorithm() string {
	return c.algorithm
}

func (c *BatchRouteOrdersCommand) setOrderIDs(orderIDs []kernel.UUID) error {
	if len(orderIDs) == 0 {
		return ErrOrderIDsAreRequired
	}

	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return err
		}
	}

	c.orderIDs = orderIDs
	return nil
}
