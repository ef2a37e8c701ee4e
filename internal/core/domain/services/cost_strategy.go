package services

import (
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// Cost model constants. Currency-agnostic units; only relative magnitudes and
// the ceiling matter to the ranking.
const (
	fuelCostPerKm        = 12.0
	agentRatePerMinute   = 5.0
	fixedOperationalCost = 50.0

	// costCeiling is where cost-based confidence reaches 0.
	costCeiling = 1000.0
)

// CostOptimizationStrategy estimates a delivery cost for every eligible
// (outlet, agent) pair and picks the cheapest: fuel proportional to the total
// leg distance, agent time at a per-minute rate over the round trip, plus a
// fixed operational cost. Confidence decays linearly from 100 at cost 0 to 0
// at the ceiling.
type CostOptimizationStrategy struct{}

// NewCostOptimizationStrategy creates the cost-optimization strategy.
func NewCostOptimizationStrategy() CostOptimizationStrategy {
	return CostOptimizationStrategy{}
}

// Name returns "cost_optimization".
func (CostOptimizationStrategy) Name() string {
	return "cost_optimization"
}

// Assign selects the minimum-cost (outlet, agent) pair for the order.
func (s CostOptimizationStrategy) Assign(o *order.Order, pool Pool) (Assignment, error) {
	if err := o.Validate(); err != nil {
		return Assignment{}, err
	}

	destination := o.Delivery().Destination()

	outlets := eligibleOutlets(pool)
	if len(outlets) == 0 {
		return Assignment{}, ErrNoEligibleOutlet
	}

	var (
		bestOutlet   *OutletCandidate
		bestAgent    *AgentCandidate
		bestCost     = math.Inf(1)
		bestOutletKm float64
		bestAgentKm  float64
	)

	for i := range outlets {
		oc := &outlets[i]

		outletKm := kernel.DistanceKm(destination, oc.Outlet.Location())
		if math.IsInf(outletKm, 1) {
			continue
		}

		agents := eligibleAgents(oc.Agents)
		for j := range agents {
			ac := &agents[j]

			agentKm := kernel.DistanceKm(oc.Outlet.Location(), ac.Agent.Location())
			if math.IsInf(agentKm, 1) {
				// Unknown agent position; assume the agent is at the outlet.
				agentKm = 0
			}

			totalKm := agentKm + outletKm
			roundTripMinutes := totalKm / AssumedSpeedKmH * 60 * 2
			cost := fuelCostPerKm*totalKm + agentRatePerMinute*roundTripMinutes + fixedOperationalCost

			if cost < bestCost {
				bestCost = cost
				bestOutlet = oc
				bestAgent = ac
				bestOutletKm = outletKm
				bestAgentKm = agentKm
			}
		}
	}

	if bestOutlet == nil {
		return Assignment{}, ErrNoEligibleAgent
	}

	return Assignment{
		Outlet:     bestOutlet.Outlet,
		Driver:     bestAgent.Agent,
		Algorithm:  s.Name(),
		Confidence: decayScore(bestCost, costCeiling),
		Metrics: map[string]float64{
			"estimated_cost":     bestCost,
			"outlet_distance_km": bestOutletKm,
			"agent_distance_km":  bestAgentKm,
		},
		EstimatedMinutes: estimateDeliveryMinutes(bestOutletKm, bestAgentKm, bestOutlet.Load),
	}, nil
}
