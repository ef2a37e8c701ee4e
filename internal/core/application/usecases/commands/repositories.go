// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS
// architecture. All commands follow a consistent pattern: validation,
// transaction management, and persistence. A failed command leaves the
// order's persisted state unchanged.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// OutletRepoFactory provides access to the outlet repository within a transaction.
	OutletRepoFactory interface {
		OutletRepository() ports.OutletRepository
	}

	// AgentRepoFactory provides access to the agent repository within a transaction.
	AgentRepoFactory interface {
		AgentRepository() ports.AgentRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// AgentUoW manages transactions for agent-only operations.
	AgentUoW interface {
		TxManager
		AgentRepoFactory
	}

	// AgentUoWFactory creates new agent unit of work instances.
	AgentUoWFactory interface {
		Create() AgentUoW
	}

	// TrackingUoW manages transactions for tracking operations, which touch
	// orders and agents.
	TrackingUoW interface {
		TxManager
		OrderRepoFactory
		AgentRepoFactory
	}

	// TrackingUoWFactory creates new tracking unit of work instances.
	TrackingUoWFactory interface {
		Create() TrackingUoW
	}

	// UoW manages transactions across order, outlet and agent aggregates.
	// Used by routing, which reads candidates and writes the assignment in
	// one transaction.
	UoW interface {
		TxManager
		OrderRepoFactory
		OutletRepoFactory
		AgentRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)
