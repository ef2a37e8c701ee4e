package services

import (
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// DistanceStrategy picks the nearest active, currently open outlet to the
// delivery point, then the nearest of that outlet's free agents by current
// position. Confidence averages two linearly decaying distance scores
// (100 at 0 km, 0 at 50 km); an unknown agent distance scores a neutral 50.
type DistanceStrategy struct{}

// NewDistanceStrategy creates the distance assignment strategy.
func NewDistanceStrategy() DistanceStrategy {
	return DistanceStrategy{}
}

// Name returns "distance".
func (DistanceStrategy) Name() string {
	return "distance"
}

// Assign selects the nearest eligible outlet and agent for the order.
func (s DistanceStrategy) Assign(o *order.Order, pool Pool) (Assignment, error) {
	if err := o.Validate(); err != nil {
		return Assignment{}, err
	}

	destination := o.Delivery().Destination()

	outlets := eligibleOutlets(pool)
	if len(outlets) == 0 {
		return Assignment{}, ErrNoEligibleOutlet
	}

	best := kernel.NearestIndex(destination, len(outlets), func(i int) kernel.GeoPoint {
		return outlets[i].Outlet.Location()
	})
	if best < 0 {
		return Assignment{}, ErrNoEligibleOutlet
	}

	chosenOutlet := outlets[best]
	outletKm := kernel.DistanceKm(destination, chosenOutlet.Outlet.Location())

	agents := eligibleAgents(chosenOutlet.Agents)
	if len(agents) == 0 {
		return Assignment{}, ErrNoEligibleAgent
	}

	bestAgent := kernel.NearestIndex(chosenOutlet.Outlet.Location(), len(agents), func(i int) kernel.GeoPoint {
		return agents[i].Agent.Location()
	})
	if bestAgent < 0 {
		// All agent positions unknown; fall back to the first free agent.
		bestAgent = 0
	}

	chosenAgent := agents[bestAgent]
	agentKm := kernel.DistanceKm(chosenOutlet.Outlet.Location(), chosenAgent.Agent.Location())

	agentScore := 50.0
	if !math.IsInf(agentKm, 1) {
		agentScore = decayScore(agentKm, distanceDecayCeilingKm)
	}
	confidence := clampScore((decayScore(outletKm, distanceDecayCeilingKm) + agentScore) / 2)

	metrics := map[string]float64{
		"outlet_distance_km": outletKm,
	}
	if !math.IsInf(agentKm, 1) {
		metrics["agent_distance_km"] = agentKm
	}

	return Assignment{
		Outlet:           chosenOutlet.Outlet,
		Driver:           chosenAgent.Agent,
		Algorithm:        s.Name(),
		Confidence:       confidence,
		Metrics:          metrics,
		EstimatedMinutes: estimateDeliveryMinutes(outletKm, agentKm, chosenOutlet.Load),
	}, nil
}
