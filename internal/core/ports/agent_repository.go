package ports

import (
	"context"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
)

// AgentRepository defines the persistence contract for delivery agents.
type AgentRepository interface {
	// Add persists a new agent aggregate to storage.
	Add(ctx context.Context, aggregate *agent.Agent) error

	// Update persists changes to an existing agent aggregate.
	Update(ctx context.Context, aggregate *agent.Agent) error

	// Get retrieves an agent aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*agent.Agent, error)

	// ListEligible retrieves the active agents attached to an outlet.
	// Availability filtering happens in the domain.
	ListEligible(ctx context.Context, outletID kernel.UUID) ([]*agent.Agent, error)

	// CountActiveDeliveries returns the agent's load: the count of
	// non-terminal orders currently assigned to them.
	CountActiveDeliveries(ctx context.Context, agentID kernel.UUID) (int, error)
}
