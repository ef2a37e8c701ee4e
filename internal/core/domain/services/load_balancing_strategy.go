package services

import (
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// LoadBalancingStrategy spreads orders across outlets by greedy variance
// reduction: it simulates assigning the order to each eligible outlet and
// picks the one whose projected load variance is lowest. That is not the same
// as picking the lowest absolute load: adding to a mid-loaded outlet can
// flatten the fleet more than adding to an empty outlier.
//
// Confidence is the relative variance improvement
// (current - projected) / current scaled to [0,100], defaulting to a neutral
// 50 when the current variance is already 0.
type LoadBalancingStrategy struct{}

// NewLoadBalancingStrategy creates the load-balancing assignment strategy.
func NewLoadBalancingStrategy() LoadBalancingStrategy {
	return LoadBalancingStrategy{}
}

// Name returns "load_balancing".
func (LoadBalancingStrategy) Name() string {
	return "load_balancing"
}

// Assign selects the outlet minimizing projected load variance, then that
// outlet's least loaded free agent.
func (s LoadBalancingStrategy) Assign(o *order.Order, pool Pool) (Assignment, error) {
	if err := o.Validate(); err != nil {
		return Assignment{}, err
	}

	outlets := eligibleOutlets(pool)
	if len(outlets) == 0 {
		return Assignment{}, ErrNoEligibleOutlet
	}

	loads := make([]float64, len(outlets))
	for i, c := range outlets {
		loads[i] = float64(c.Load)
	}
	currentVariance := variance(loads)

	best := 0
	bestProjected := math.Inf(1)
	for i := range outlets {
		loads[i]++
		projected := variance(loads)
		loads[i]--

		if projected < bestProjected {
			bestProjected = projected
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

	confidence := 50.0
	if currentVariance > 0 {
		confidence = clampScore((currentVariance - bestProjected) / currentVariance * 100)
	}

	outletKm := kernel.DistanceKm(o.Delivery().Destination(), chosenOutlet.Outlet.Location())
	agentKm := kernel.DistanceKm(chosenOutlet.Outlet.Location(), chosenAgent.Agent.Location())

	return Assignment{
		Outlet:     chosenOutlet.Outlet,
		Driver:     chosenAgent.Agent,
		Algorithm:  s.Name(),
		Confidence: confidence,
		Metrics: map[string]float64{
			"current_variance":   currentVariance,
			"projected_variance": bestProjected,
			"outlet_load":        float64(chosenOutlet.Load),
		},
		EstimatedMinutes: estimateDeliveryMinutes(outletKm, agentKm, chosenOutlet.Load),
	}, nil
}

// variance is the population variance of the load distribution.
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}
