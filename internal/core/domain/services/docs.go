// Package services provides the domain services that implement fulfillment
// decision-making across aggregates:
//
//   - five interchangeable assignment strategies (distance, availability,
//     load_balancing, cost_optimization, customer_preference) behind a common
//     Strategy contract, all greedy heuristics over a candidate Pool
//   - the geofence evaluator that detects approach and arrival proximity
//   - the ETA estimator with its hour-of-day traffic buffer and the
//     materiality threshold for republishing
//
// Confidence values produced here are bounded [0,100] ranking signals, not
// calibrated probabilities.
package services
