package trackingstate_test

import (
	"testing"
	"time"

	"dispatch/internal/adapters/out/redis/trackingstate"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*trackingstate.RedisTrackingStateStore, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return trackingstate.NewRedisTrackingStateStore(client, ttl), srv
}

func TestRedisTrackingStateStore_Flags(t *testing.T) {
	t.Run("unknown order has zero flags", func(t *testing.T) {
		store, _ := newTestStore(t, time.Hour)

		flags, err := store.Flags(t.Context(), kernel.NewUUID())

		require.NoError(t, err)
		assert.False(t, flags.ApproachingFired)
		assert.False(t, flags.ArrivedFired)
	})

	t.Run("marked flags are reported", func(t *testing.T) {
		store, _ := newTestStore(t, time.Hour)
		orderID := kernel.NewUUID()

		require.NoError(t, store.MarkApproaching(t.Context(), orderID))

		flags, err := store.Flags(t.Context(), orderID)
		require.NoError(t, err)
		assert.True(t, flags.ApproachingFired)
		assert.False(t, flags.ArrivedFired)

		require.NoError(t, store.MarkArrived(t.Context(), orderID))

		flags, err = store.Flags(t.Context(), orderID)
		require.NoError(t, err)
		assert.True(t, flags.ApproachingFired)
		assert.True(t, flags.ArrivedFired)
	})

	t.Run("marking twice is a no-op", func(t *testing.T) {
		store, _ := newTestStore(t, time.Hour)
		orderID := kernel.NewUUID()

		require.NoError(t, store.MarkApproaching(t.Context(), orderID))
		require.NoError(t, store.MarkApproaching(t.Context(), orderID))

		flags, err := store.Flags(t.Context(), orderID)
		require.NoError(t, err)
		assert.True(t, flags.ApproachingFired)
		assert.False(t, flags.ArrivedFired)
	})

	t.Run("orders do not share state", func(t *testing.T) {
		store, _ := newTestStore(t, time.Hour)
		first := kernel.NewUUID()
		second := kernel.NewUUID()

		require.NoError(t, store.MarkArrived(t.Context(), first))

		flags, err := store.Flags(t.Context(), second)
		require.NoError(t, err)
		assert.False(t, flags.ArrivedFired)
	})
}

func TestRedisTrackingStateStore_LastETA(t *testing.T) {
	t.Run("nil when nothing stored", func(t *testing.T) {
		store, _ := newTestStore(t, time.Hour)

		eta, err := store.LastETA(t.Context(), kernel.NewUUID())

		require.NoError(t, err)
		assert.Nil(t, eta)
	})

	t.Run("round trips the stored time", func(t *testing.T) {
		store, _ := newTestStore(t, time.Hour)
		orderID := kernel.NewUUID()
		stored := time.Date(2026, time.March, 14, 9, 26, 53, 589_000_000, time.UTC)

		require.NoError(t, store.PutETA(t.Context(), orderID, stored))

		eta, err := store.LastETA(t.Context(), orderID)
		require.NoError(t, err)
		require.NotNil(t, eta)
		assert.True(t, eta.Equal(stored))
	})

	t.Run("a newer ETA replaces the old one", func(t *testing.T) {
		store, _ := newTestStore(t, time.Hour)
		orderID := kernel.NewUUID()
		first := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
		second := first.Add(12 * time.Minute)

		require.NoError(t, store.PutETA(t.Context(), orderID, first))
		require.NoError(t, store.PutETA(t.Context(), orderID, second))

		eta, err := store.LastETA(t.Context(), orderID)
		require.NoError(t, err)
		require.NotNil(t, eta)
		assert.True(t, eta.Equal(second))
	})
}

func TestRedisTrackingStateStore_TTL(t *testing.T) {
	t.Run("state expires after the configured ttl", func(t *testing.T) {
		store, srv := newTestStore(t, time.Hour)
		orderID := kernel.NewUUID()

		require.NoError(t, store.MarkApproaching(t.Context(), orderID))
		require.NoError(t, store.PutETA(t.Context(), orderID, time.Now()))

		srv.FastForward(time.Hour + time.Second)

		flags, err := store.Flags(t.Context(), orderID)
		require.NoError(t, err)
		assert.False(t, flags.ApproachingFired)

		eta, err := store.LastETA(t.Context(), orderID)
		require.NoError(t, err)
		assert.Nil(t, eta)
	})

	t.Run("writes refresh the ttl", func(t *testing.T) {
		store, srv := newTestStore(t, time.Hour)
		orderID := kernel.NewUUID()

		require.NoError(t, store.MarkApproaching(t.Context(), orderID))
		srv.FastForward(40 * time.Minute)
		require.NoError(t, store.MarkArrived(t.Context(), orderID))
		srv.FastForward(40 * time.Minute)

		flags, err := store.Flags(t.Context(), orderID)
		require.NoError(t, err)
		assert.True(t, flags.ApproachingFired)
		assert.True(t, flags.ArrivedFired)
	})
}

func TestRedisTrackingStateStore_Clear(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	orderID := kernel.NewUUID()

	require.NoError(t, store.MarkApproaching(t.Context(), orderID))
	require.NoError(t, store.MarkArrived(t.Context(), orderID))
	require.NoError(t, store.PutETA(t.Context(), orderID, time.Now()))

	require.NoError(t, store.Clear(t.Context(), orderID))

	flags, err := store.Flags(t.Context(), orderID)
	require.NoError(t, err)
	assert.False(t, flags.ApproachingFired)
	assert.False(t, flags.ArrivedFired)

	eta, err := store.LastETA(t.Context(), orderID)
	require.NoError(t, err)
	assert.Nil(t, eta)
}

func TestRedisTrackingStateStore_ClearUnknownOrder(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	assert.NoError(t, store.Clear(t.Context(), kernel.NewUUID()))
}
