package services

import (
	"math"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// ETAMaterialityMinutes is the minimum change in a recomputed ETA before it
// is republished to subscribers. Smaller deltas are stored silently to keep
// the realtime channel quiet.
const ETAMaterialityMinutes = 5.0

// ErrETAUnavailable is returned when an ETA cannot be computed because the
// agent or delivery position is unknown.
var ErrETAUnavailable = errs.NewValueIsRequiredError("agent and delivery coordinates for ETA")

// TrafficBufferMinutes returns the coarse hour-of-day traffic allowance added
// to every ETA: heavier during the two daily rush windows, light otherwise.
func TrafficBufferMinutes(hour int) float64 {
	switch {
	case hour >= 7 && hour <= 9:
		return 15
	case hour >= 17 && hour <= 19:
		return 20
	default:
		return 5
	}
}

// EstimateArrival recomputes the estimated arrival time from the agent's
// position: travel at the assumed speed over the great-circle distance plus
// the traffic buffer for the current hour. Returns ErrETAUnavailable when
// either coordinate is unknown.
func EstimateArrival(now time.Time, from, to kernel.GeoPoint) (time.Time, float64, error) {
	d := kernel.DistanceKm(from, to)
	if math.IsInf(d, 1) {
		return time.Time{}, 0, ErrETAUnavailable
	}

	minutes := d/AssumedSpeedKmH*60 + TrafficBufferMinutes(now.Hour())
	return now.Add(time.Duration(minutes * float64(time.Minute))), minutes, nil
}

// IsMaterialETAChange reports whether a recomputed ETA differs enough from
// the stored one to warrant republishing. The first estimate is always
// material.
func IsMaterialETAChange(stored *time.Time, recomputed time.Time) bool {
	if stored == nil {
		return true
	}

	delta := recomputed.Sub(*stored)
	if delta < 0 {
		delta = -delta
	}
	return delta.Minutes() > ETAMaterialityMinutes
}
