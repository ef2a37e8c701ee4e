package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrSetAgentStatusCommandIsNotConstructed = errors.New(
	"SetAgentStatusCommand must be created via NewSetAgentStatusCommand constructor",
)

// SetAgentStatusCommand carries a self-reported availability change from a
// delivery agent.
type SetAgentStatusCommand struct { //nolint:recvcheck //using for validation
	agentID kernel.UUID
	status  agent.WorkStatus

	guard guard.ConstructorGuard
}

// NewSetAgentStatusCommand creates an availability change command.
func NewSetAgentStatusCommand(agentID kernel.UUID, status agent.WorkStatus) (SetAgentStatusCommand, error) {
	cmd := SetAgentStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setAgentID(agentID),
		cmd.setStatus(status),
	); err != nil {
		return SetAgentStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c SetAgentStatusCommand) Validate() error {
	return c.guard.Validate(ErrSetAgentStatusCommandIsNotConstructed)
}

// AgentID returns the reporting agent.
func (c SetAgentStatusCommand) AgentID() kernel.UUID {
	return c.agentID
}

// Status returns the requested availability.
func (c SetAgentStatusCommand) Status() agent.WorkStatus {
	return c.status
}

func (c *SetAgentStatusCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	c.agentID = agentID
	return nil
}

func (c *SetAgentStatusCommand) setStatus(status agent.WorkStatus) error {
	if err := status.Validate(); err != nil {
		return err
	}

	c.status = status
	return nil
}
