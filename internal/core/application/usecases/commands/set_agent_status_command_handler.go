package commands

import (
	"context"
	"log/slog"
)

// SetAgentStatusCommandHandler applies a self-reported availability change
// to an agent.
type SetAgentStatusCommandHandler struct {
	uowFactory AgentUoWFactory
	logger     *slog.Logger
}

// NewSetAgentStatusCommandHandler creates the availability change handler.
func NewSetAgentStatusCommandHandler(uowFactory AgentUoWFactory, logger *slog.Logger) SetAgentStatusCommandHandler {
	return SetAgentStatusCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "set_agent_status_handler"),
	}
}

// Handle processes one availability change.
func (h SetAgentStatusCommandHandler) Handle(ctx context.Context, command SetAgentStatusCommand) error {
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

	agentsRepo := uow.AgentRepository()

	a, err := agentsRepo.Get(ctx, command.AgentID())
	if err != nil {
		return err
	}

	if err = a.SetStatus(command.Status()); err != nil {
		return err
	}

	if err = agentsRepo.Update(ctx, a); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Agent status updated",
		"agent_id", command.AgentID(), "status", command.Status().String())
	return nil
}
