package services

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// AvailabilityStrategy picks the eligible outlet with the lowest current
// order load, then that outlet's free agent with the fewest active
// deliveries. Confidence averages two decaying load scores (100 at load 0,
// 0 at load 10). Ties keep the earlier candidate.
type AvailabilityStrategy struct{}

// NewAvailabilityStrategy creates the availability assignment strategy.
func NewAvailabilityStrategy() AvailabilityStrategy {
	return AvailabilityStrategy{}
}

// Name returns "availability".
func (AvailabilityStrategy) Name() string {
	return "availability"
}

// Assign selects the least loaded eligible outlet and agent for the order.
func (s AvailabilityStrategy) Assign(o *order.Order, pool Pool) (Assignment, error) {
	if err := o.Validate(); err != nil {
		return Assignment{}, err
	}

	outlets := eligibleOutlets(pool)
	if len(outlets) == 0 {
		return Assignment{}, ErrNoEligibleOutlet
	}

	best := 0
	for i := 1; i < len(outlets); i++ {
		if outlets[i].Load < outlets[best].Load {
			best = i
		}
	}
	chosenOutlet := outlets[best]

	agents := eligibleAgents(chosenOutlet.Agents)
	if len(agents) == 0 {
		return Assignment{}, ErrNoEligibleAgent
	}

	bestAgent := 0
	for i := 1; i < len(agents); i++ {
		if agents[i].Load < agents[bestAgent].Load {
			bestAgent = i
		}
	}
	chosenAgent := agents[bestAgent]

	confidence := clampScore((decayScore(float64(chosenOutlet.Load), loadDecayCeiling) +
		decayScore(float64(chosenAgent.Load), loadDecayCeiling)) / 2)

	outletKm := kernel.DistanceKm(o.Delivery().Destination(), chosenOutlet.Outlet.Location())
	agentKm := kernel.DistanceKm(chosenOutlet.Outlet.Location(), chosenAgent.Agent.Location())

	return Assignment{
		Outlet:     chosenOutlet.Outlet,
		Driver:     chosenAgent.Agent,
		Algorithm:  s.Name(),
		Confidence: confidence,
		Metrics: map[string]float64{
			"outlet_load": float64(chosenOutlet.Load),
			"agent_load":  float64(chosenAgent.Load),
		},
		EstimatedMinutes: estimateDeliveryMinutes(outletKm, agentKm, chosenOutlet.Load),
	}, nil
}
