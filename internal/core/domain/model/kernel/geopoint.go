package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// MinLatitude and MaxLatitude bound valid WGS-84 latitudes in degrees.
	MinLatitude float64 = -90
	MaxLatitude float64 = 90
	// MinLongitude and MaxLongitude bound valid WGS-84 longitudes in degrees.
	MinLongitude float64 = -180
	MaxLongitude float64 = 180

	// earthRadiusKm is the mean radius of Earth in kilometers.
	earthRadiusKm = 6371.0
)

// ErrGeoPointIsNotConstructed is returned when using an improperly initialized
// GeoPoint. Points must be created via NewGeoPoint to guarantee valid bounds.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint is an immutable value object representing a WGS-84 coordinate pair.
// The zero value is invalid and fails validation; use NewGeoPoint.
//
// Example:
//
//	point, err := kernel.NewGeoPoint(-1.2921, 36.8219)
//	if err != nil {
//	    // out-of-bounds coordinates
//	}
//	fmt.Println(point) // GeoPoint(-1.292100,36.821900)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint creates a GeoPoint with the specified latitude and longitude in
// degrees. Both must be within WGS-84 bounds; NaN values are rejected.
func NewGeoPoint(lat float64, lng float64) (GeoPoint, error) {
	point := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(point.setLat(lat), point.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return point, nil
}

// Validate checks that the GeoPoint was created through NewGeoPoint.
// The zero value fails with ErrGeoPointIsNotConstructed.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

// String returns "GeoPoint(lat,lng)" for logging and debugging.
// Implements fmt.Stringer.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.lat, p.lng)
}

// IsEqual compares two points for coordinate equality.
// Both points must be properly constructed for the comparison to succeed.
func (p GeoPoint) IsEqual(other GeoPoint) (bool, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return p.lat == other.lat && p.lng == other.lng, nil
}

// DistanceKm returns the great-circle (haversine) distance between two points
// in kilometers. An unconstructed point makes the distance unknowable, so the
// result is +Inf rather than an error. Candidate-selection logic treats +Inf
// as "unusable", never as a valid tie-break winner.
func DistanceKm(a, b GeoPoint) float64 {
	if a.Validate() != nil || b.Validate() != nil {
		return math.Inf(1)
	}

	dLat := degToRad(b.lat - a.lat)
	dLng := degToRad(b.lng - a.lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat +
		math.Cos(degToRad(a.lat))*math.Cos(degToRad(b.lat))*sinLng*sinLng

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// NearestIndex scans n candidates and returns the index of the one closest to
// target by great-circle distance, or -1 when the candidate set is empty or no
// candidate has a usable distance. pointAt supplies the coordinates of the
// candidate at each index. Ties keep the earlier candidate, which makes the
// scan deterministic.
func NearestIndex(target GeoPoint, n int, pointAt func(i int) GeoPoint) int {
	best := -1
	bestDistance := math.Inf(1)

	for i := 0; i < n; i++ {
		d := DistanceKm(target, pointAt(i))
		if d < bestDistance {
			bestDistance = d
			best = i
		}
	}

	return best
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func (p *GeoPoint) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < MinLatitude || lat > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("lat", lat, MinLatitude, MaxLatitude)
	}

	p.lat = lat
	return nil
}

func (p *GeoPoint) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < MinLongitude || lng > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("lng", lng, MinLongitude, MaxLongitude)
	}

	p.lng = lng
	return nil
}
