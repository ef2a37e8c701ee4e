package services

import (
	"dispatch/internal/core/domain/model/kernel"
)

// Geofence radii around the delivery point, in kilometers.
const (
	// ApproachRadiusKm triggers the one-time "approaching" event and the
	// promotion to the at_location status.
	ApproachRadiusKm = 1.0

	// ArrivalRadiusKm triggers the one-time "arrived" event. It does not
	// force a status change; drivers confirm delivery explicitly.
	ArrivalRadiusKm = 0.1
)

// GeofenceFlags records which proximity events have already fired for an
// order. Each fires at most once; the flags live in the ephemeral tracking
// state store and are cleared when tracking for the order ends.
type GeofenceFlags struct {
	ApproachingFired bool
	ArrivedFired     bool
}

// GeofenceEvaluation is the outcome of one geofence check: which events fire
// on this position report, given the flags already set.
type GeofenceEvaluation struct {
	Approaching bool
	Arrived     bool
	DistanceKm  float64
}

// EvaluateGeofence computes the agent's distance to the delivery point and
// reports which proximity events fire now. An event fires only when its
// radius is crossed and its flag has not fired before, making repeated
// position ticks inside the radius idempotent. An unknown distance (+Inf)
// fires nothing.
func EvaluateGeofence(agentPosition, destination kernel.GeoPoint, flags GeofenceFlags) GeofenceEvaluation {
	d := kernel.DistanceKm(agentPosition, destination)

	return GeofenceEvaluation{
		Approaching: d <= ApproachRadiusKm && !flags.ApproachingFired,
		Arrived:     d <= ArrivalRadiusKm && !flags.ArrivedFired,
		DistanceKm:  d,
	}
}
