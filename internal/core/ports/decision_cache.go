package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// RoutingDecision is the ephemeral record of one routing call. It is held in
// a short-lived cache for inspection and the preference heuristics, and is
// not part of the authoritative order.
type RoutingDecision struct {
	OrderID          kernel.UUID
	Algorithm        string
	OutletID         kernel.UUID
	DriverID         kernel.UUID
	Confidence       float64
	Metrics          map[string]float64
	EstimatedMinutes float64
	DecidedAt        time.Time
}

// RoutingDecisionCache stores routing decisions keyed by order id with a TTL
// of about a day. Accessed only through narrow get/put operations, never
// iterated.
type RoutingDecisionCache interface {
	// Put stores the decision for its order, replacing any previous one.
	Put(ctx context.Context, decision RoutingDecision) error

	// Get returns the cached decision for the order, or nil when none is
	// cached (expired or never routed).
	Get(ctx context.Context, orderID kernel.UUID) (*RoutingDecision, error)
}
