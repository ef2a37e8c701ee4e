package services

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

const (
	preferenceBaseConfidence = 60.0
	preferenceHonoredBoost   = 20.0
)

// CustomerPreferenceStrategy honors the customer's previously cached
// preferred outlet and driver when they are still eligible, and falls back to
// the distance strategy's choice otherwise. Confidence starts at a base value
// and is boosted for each preference actually honored.
type CustomerPreferenceStrategy struct {
	fallback DistanceStrategy
}

// NewCustomerPreferenceStrategy creates the customer-preference strategy.
func NewCustomerPreferenceStrategy() CustomerPreferenceStrategy {
	return CustomerPreferenceStrategy{fallback: NewDistanceStrategy()}
}

// Name returns "customer_preference".
func (CustomerPreferenceStrategy) Name() string {
	return "customer_preference"
}

// Assign selects the preferred outlet/driver where still eligible, falling
// back to the distance pick per slot.
func (s CustomerPreferenceStrategy) Assign(o *order.Order, pool Pool) (Assignment, error) {
	if err := o.Validate(); err != nil {
		return Assignment{}, err
	}

	base, err := s.fallback.Assign(o, pool)
	if err != nil {
		return Assignment{}, err
	}

	chosen := base
	outletHonored := false
	driverHonored := false

	if pool.PreferredOutletID != nil {
		for _, oc := range eligibleOutlets(pool) {
			if !oc.Outlet.ID().IsEqual(*pool.PreferredOutletID) {
				continue
			}
			if agents := eligibleAgents(oc.Agents); len(agents) > 0 {
				chosen.Outlet = oc.Outlet
				chosen.Driver = agents[0].Agent
				outletHonored = true

				if pool.PreferredDriverID != nil {
					for _, ac := range agents {
						if ac.Agent.ID().IsEqual(*pool.PreferredDriverID) {
							chosen.Driver = ac.Agent
							driverHonored = true
							break
						}
					}
				}

				outletKm := kernel.DistanceKm(o.Delivery().Destination(), oc.Outlet.Location())
				agentKm := kernel.DistanceKm(oc.Outlet.Location(), chosen.Driver.Location())
				chosen.EstimatedMinutes = estimateDeliveryMinutes(outletKm, agentKm, oc.Load)
			}
			break
		}
	}

	confidence := preferenceBaseConfidence
	if outletHonored {
		confidence += preferenceHonoredBoost
	}
	if driverHonored {
		confidence += preferenceHonoredBoost
	}

	metrics := map[string]float64{
		"outlet_preference_honored": boolMetric(outletHonored),
		"driver_preference_honored": boolMetric(driverHonored),
	}

	return Assignment{
		Outlet:           chosen.Outlet,
		Driver:           chosen.Driver,
		Algorithm:        s.Name(),
		Confidence:       clampScore(confidence),
		Metrics:          metrics,
		EstimatedMinutes: chosen.EstimatedMinutes,
	}, nil
}

func boolMetric(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
