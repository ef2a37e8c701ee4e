// Package kernel provides core domain primitives shared across the dispatch
// domain model.
//
// The package includes:
//   - UUID: a value object for unique identifiers with validation and comparison
//   - GeoPoint: an immutable WGS-84 coordinate pair with great-circle distance
//   - NearestIndex: a linear nearest-neighbor scan over arbitrary candidate sets
//
// These primitives enforce domain invariants at construction time, so that the
// rest of the domain model can assume coordinates and identifiers are valid.
// They are immutable and safe for concurrent use.
package kernel
