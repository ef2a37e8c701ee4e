// Package trackingstate implements the ephemeral per-order tracking state on
// Redis. Each order gets one hash holding its set-once geofence flags and the
// last published ETA. Keys expire on a TTL as a safety net; the happy path
// clears them explicitly when the order reaches a terminal status.
package trackingstate

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long abandoned tracking state lingers.
const DefaultTTL = 24 * time.Hour

const (
	keyPrefix = "dispatch:tracking:"

	fieldApproaching = "approaching"
	fieldArrived     = "arrived"
	fieldLastETA     = "last_eta"
)

// RedisTrackingStateStore implements ports.TrackingStateStore on Redis.
type RedisTrackingStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTrackingStateStore creates a tracking state store. A non-positive
// ttl falls back to DefaultTTL.
func NewRedisTrackingStateStore(client *redis.Client, ttl time.Duration) *RedisTrackingStateStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &RedisTrackingStateStore{
		client: client,
		ttl:    ttl,
	}
}

// Flags returns the geofence flags for the order; zero flags when the order
// has no tracking state yet.
func (s *RedisTrackingStateStore) Flags(ctx context.Context, orderID kernel.UUID) (services.GeofenceFlags, error) {
	values, err := s.client.HGetAll(ctx, s.key(orderID)).Result()
	if err != nil {
		return services.GeofenceFlags{}, err
	}

	return services.GeofenceFlags{
		ApproachingFired: values[fieldApproaching] == "1",
		ArrivedFired:     values[fieldArrived] == "1",
	}, nil
}

// MarkApproaching sets the approaching flag. Setting an already set flag is
// a no-op.
func (s *RedisTrackingStateStore) MarkApproaching(ctx context.Context, orderID kernel.UUID) error {
	return s.setFlag(ctx, orderID, fieldApproaching)
}

// MarkArrived sets the arrived flag. Setting an already set flag is a no-op.
func (s *RedisTrackingStateStore) MarkArrived(ctx context.Context, orderID kernel.UUID) error {
	return s.setFlag(ctx, orderID, fieldArrived)
}

// LastETA returns the last stored ETA for the order, nil when none.
func (s *RedisTrackingStateStore) LastETA(ctx context.Context, orderID kernel.UUID) (*time.Time, error) {
	raw, err := s.client.HGet(ctx, s.key(orderID), fieldLastETA).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	eta, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}

	return &eta, nil
}

// PutETA stores a recomputed ETA.
func (s *RedisTrackingStateStore) PutETA(ctx context.Context, orderID kernel.UUID, eta time.Time) error {
	key := s.key(orderID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, fieldLastETA, eta.UTC().Format(time.RFC3339Nano))
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Clear releases all tracking state for the order.
func (s *RedisTrackingStateStore) Clear(ctx context.Context, orderID kernel.UUID) error {
	return s.client.Del(ctx, s.key(orderID)).Err()
}

func (s *RedisTrackingStateStore) setFlag(ctx context.Context, orderID kernel.UUID, field string) error {
	key := s.key(orderID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, field, "1")
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisTrackingStateStore) key(orderID kernel.UUID) string {
	return keyPrefix + orderID.String()
}
