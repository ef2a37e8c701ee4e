// Package decisioncache implements the routing decision cache on Redis.
// Decisions are stored as JSON values under a per-order key with a TTL, so
// the cache answers "why was this order routed the way it was" for roughly a
// day without any cleanup job.
package decisioncache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a routing decision stays queryable.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "dispatch:decision:"

// RedisDecisionCache implements ports.RoutingDecisionCache on Redis.
type RedisDecisionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDecisionCache creates a decision cache. A non-positive ttl falls
// back to DefaultTTL.
func NewRedisDecisionCache(client *redis.Client, ttl time.Duration) *RedisDecisionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisDecisionCache{
		client: client,
		ttl:    ttl,
	}
}

// Put stores the decision for its order, overwriting any previous decision
// and resetting the TTL.
func (c *RedisDecisionCache) Put(ctx context.Context, decision ports.RoutingDecision) error {
	raw, err := json.Marshal(decisionRecordFromPort(decision))
	if err != nil {
		return err
	}

	return c.client.Set(ctx, keyPrefix+decision.OrderID.String(), raw, c.ttl).Err()
}

// Get returns the cached decision for the order, nil when none is stored or
// the entry has expired.
func (c *RedisDecisionCache) Get(ctx context.Context, orderID kernel.UUID) (*ports.RoutingDecision, error) {
	raw, err := c.client.Get(ctx, keyPrefix+orderID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var record decisionRecord
	if err = json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}

	return record.toPort()
}

// decisionRecord is the JSON shape of one cached decision. Identifiers are
// stored as canonical UUID strings.
type decisionRecord struct {
	OrderID          string             `json:"orderId"`
	Algorithm        string             `json:"algorithm"`
	OutletID         string             `json:"outletId"`
	DriverID         string             `json:"driverId"`
	Confidence       float64            `json:"confidence"`
	Metrics          map[string]float64 `json:"metrics,omitempty"`
	EstimatedMinutes float64            `json:"estimatedMinutes"`
	DecidedAt        time.Time          `json:"decidedAt"`
}

func decisionRecordFromPort(decision ports.RoutingDecision) decisionRecord {
	return decisionRecord{
		OrderID:          decision.OrderID.String(),
		Algorithm:        decision.Algorithm,
		OutletID:         decision.OutletID.String(),
		DriverID:         decision.DriverID.String(),
		Confidence:       decision.Confidence,
		Metrics:          decision.Metrics,
		EstimatedMinutes: decision.EstimatedMinutes,
		DecidedAt:        decision.DecidedAt,
	}
}

func (r decisionRecord) toPort() (*ports.RoutingDecision, error) {
	orderID, err := kernel.UUIDFromString(r.OrderID)
	if err != nil {
		return nil, err
	}

	outletID, err := kernel.UUIDFromString(r.OutletID)
	if err != nil {
		return nil, err
	}

	driverID, err := kernel.UUIDFromString(r.DriverID)
	if err != nil {
		return nil, err
	}

	return &ports.RoutingDecision{
		OrderID:          orderID,
		Algorithm:        r.Algorithm,
		OutletID:         outletID,
		DriverID:         driverID,
		Confidence:       r.Confidence,
		Metrics:          r.Metrics,
		EstimatedMinutes: r.EstimatedMinutes,
		DecidedAt:        r.DecidedAt,
	}, nil
}
