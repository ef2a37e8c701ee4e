package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateAgentLocationCommandIsNotConstructed = errors.New(
	"UpdateAgentLocationCommand must be created via NewUpdateAgentLocationCommand constructor",
)

// UpdateAgentLocationCommand carries one position report from a delivery
// agent for the order they are servicing.
type UpdateAgentLocationCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	agentID  kernel.UUID
	location kernel.GeoPoint
	heading  *float64
	speedKmH *float64

	guard guard.ConstructorGuard
}

// NewUpdateAgentLocationCommand creates a location report command.
// heading and speedKmH are optional telemetry, nil when the device does not
// report them.
func NewUpdateAgentLocationCommand(
	orderID kernel.UUID,
	agentID kernel.UUID,
	location kernel.GeoPoint,
	heading *float64,
	speedKmH *float64,
) (UpdateAgentLocationCommand, error) {
	cmd := UpdateAgentLocationCommand{
		heading:  heading,
		speedKmH: speedKmH,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setAgentID(agentID),
		cmd.setLocation(location),
	); err != nil {
		return UpdateAgentLocationCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateAgentLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateAgentLocationCommandIsNotConstructed)
}

// OrderID returns the order the report is for.
func (c UpdateAgentLocationCommand) OrderID() kernel.UUID {
	return c.orderID
}

// AgentID returns the reporting agent.
func (c UpdateAgentLocationCommand) AgentID() kernel.UUID {
	return c.agentID
}

// Location returns the reported position.
func (c UpdateAgentLocationCommand) Location() kernel.GeoPoint {
	return c.location
}

// Heading returns the reported heading in degrees, nil when absent.
func (c UpdateAgentLocationCommand) Heading() *float64 {
	return c.heading
}

// SpeedKmH returns the reported speed, nil when absent.
func (c UpdateAgentLocationCommand) SpeedKmH() *float64 {
	return c.speedKmH
}

func (c *UpdateAgentLocationCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *UpdateAgentLocationCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	c.agentID = agentID
	return nil
}

func (c *UpdateAgentLocationCommand) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}
