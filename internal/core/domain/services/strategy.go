package services

import (
	"errors"
	"math"
	"time"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/outlet"
)

// Fulfillment heuristics shared by all assignment strategies.
const (
	// AssumedSpeedKmH is the assumed average driving speed used for every
	// time estimate in lieu of true road-network routing.
	AssumedSpeedKmH = 30.0

	// PrepTimeMinutes is the assumed order preparation time at the outlet.
	PrepTimeMinutes = 15.0

	// LoadPenaltyMinutes is the extra delay per order already queued at the
	// chosen outlet.
	LoadPenaltyMinutes = 5.0

	// distanceDecayCeilingKm is where a distance-based confidence reaches 0.
	distanceDecayCeilingKm = 50.0

	// loadDecayCeiling is where a load-based confidence reaches 0.
	loadDecayCeiling = 10.0
)

// Errors shared by the assignment strategies.
var (
	// ErrNoEligibleOutlet is returned when no active, currently open outlet is
	// available for the order.
	ErrNoEligibleOutlet = errors.New("no eligible outlet available")

	// ErrNoEligibleAgent is returned when the chosen outlet has no agent free
	// to take the delivery.
	ErrNoEligibleAgent = errors.New("no eligible agent available")

	// ErrUnknownStrategy is returned by the registry for unrecognized
	// algorithm names.
	ErrUnknownStrategy = errors.New("unknown assignment strategy")
)

// AgentCandidate pairs an agent with its current delivery load.
type AgentCandidate struct {
	Agent *agent.Agent
	// Load is the count of active deliveries the agent is carrying.
	Load int
}

// OutletCandidate pairs an outlet with its current order load and the agents
// attached to it.
type OutletCandidate struct {
	Outlet *outlet.Outlet
	// Load is the count of orders in non-terminal pre-dispatch statuses.
	Load   int
	Agents []AgentCandidate
}

// Pool is the snapshot of candidates a strategy decides over. The application
// layer assembles it from the repositories so strategies stay free of I/O.
type Pool struct {
	Outlets []OutletCandidate

	// PreferredOutletID and PreferredDriverID carry the customer's cached
	// preference, nil when the customer has none. Only the
	// customer_preference strategy consults them.
	PreferredOutletID *kernel.UUID
	PreferredDriverID *kernel.UUID

	// Now anchors operating-hours eligibility checks.
	Now time.Time
}

// Assignment is the scored outcome of one strategy invocation.
type Assignment struct {
	Outlet    *outlet.Outlet
	Driver    *agent.Agent
	Algorithm string

	// Confidence is a bounded [0,100] ranking signal, not a probability.
	Confidence float64

	// Metrics carries strategy-specific diagnostic values for the decision
	// record (distances, loads, variances, costs).
	Metrics map[string]float64

	// EstimatedMinutes is the shared delivery-time estimate for the pick.
	EstimatedMinutes float64
}

// Strategy is the common contract of the assignment algorithms: consume an
// order with delivery coordinates plus the current candidate pool, produce a
// scored outlet/driver pick or an error when no candidate is eligible.
type Strategy interface {
	Name() string
	Assign(o *order.Order, pool Pool) (Assignment, error)
}

// Registry resolves strategies by algorithm name.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates a registry holding all five assignment strategies.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	for _, s := range []Strategy{
		NewDistanceStrategy(),
		NewAvailabilityStrategy(),
		NewLoadBalancingStrategy(),
		NewCostOptimizationStrategy(),
		NewCustomerPreferenceStrategy(),
	} {
		r.strategies[s.Name()] = s
	}
	return r
}

// Get returns the strategy registered under name, or ErrUnknownStrategy.
func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, ErrUnknownStrategy
	}
	return s, nil
}

// Names returns the registered algorithm names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	return names
}

// eligibleOutlets filters the pool down to outlets that are active and open
// at the pool's reference time.
func eligibleOutlets(pool Pool) []OutletCandidate {
	eligible := make([]OutletCandidate, 0, len(pool.Outlets))
	for _, c := range pool.Outlets {
		if c.Outlet != nil && c.Outlet.IsEligibleAt(pool.Now) {
			eligible = append(eligible, c)
		}
	}
	return eligible
}

// eligibleAgents filters an outlet's agents down to those free for a delivery.
func eligibleAgents(candidates []AgentCandidate) []AgentCandidate {
	eligible := make([]AgentCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Agent != nil && c.Agent.IsEligible() {
			eligible = append(eligible, c)
		}
	}
	return eligible
}

// estimateDeliveryMinutes is the delivery-time model shared by all
// strategies: preparation, travel over agent-to-outlet plus outlet-to-drop
// legs at the assumed speed, and a queue penalty per order already loading the
// outlet. An unknown agent leg contributes nothing rather than poisoning the
// estimate.
func estimateDeliveryMinutes(outletKm, agentKm float64, outletLoad int) float64 {
	if math.IsInf(agentKm, 1) {
		agentKm = 0
	}

	travel := (outletKm + agentKm) / AssumedSpeedKmH * 60
	return PrepTimeMinutes + travel + LoadPenaltyMinutes*float64(outletLoad)
}

// decayScore maps value linearly onto [0,100]: 100 at 0, 0 at ceiling and
// beyond.
func decayScore(value, ceiling float64) float64 {
	return clampScore(100 * (1 - value/ceiling))
}

// clampScore bounds a confidence to [0,100].
func clampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
