package outlet_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/outlet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustGeoPoint(t *testing.T, lat, lng float64) kernel.GeoPoint {
	t.Helper()
	point, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return point
}

// tuesdayAt returns a fixed Tuesday with the given wall-clock time in UTC.
func tuesdayAt(hour, minute int) time.Time {
	return time.Date(2026, time.August, 25, hour, minute, 0, 0, time.UTC)
}

func TestNewOutlet(t *testing.T) {
	t.Run("creates_active_outlet", func(t *testing.T) {
		id := kernel.NewUUID()
		location := mustGeoPoint(t, 55.75, 37.61)

		o, err := outlet.NewOutlet(id, "Central Kitchen", location, nil)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.Equal(t, "Central Kitchen", o.Name())
		assert.True(t, o.IsActive())
		assert.Nil(t, o.Hours())
	})

	t.Run("rejects_invalid_parameters", func(t *testing.T) {
		location := mustGeoPoint(t, 55.75, 37.61)

		_, err := outlet.NewOutlet(kernel.UUID{}, "Kitchen", location, nil)
		require.Error(t, err)

		_, err = outlet.NewOutlet(kernel.NewUUID(), "", location, nil)
		require.ErrorIs(t, err, outlet.ErrNameIsRequired)

		_, err = outlet.NewOutlet(kernel.NewUUID(), "Kitchen", kernel.GeoPoint{}, nil)
		require.Error(t, err)
	})

	t.Run("zero_value_fails_validation", func(t *testing.T) {
		var o outlet.Outlet
		assert.Equal(t, outlet.ErrOutletIsNotConstructed, o.Validate())
	})
}

func TestOutlet_IsOpenAt(t *testing.T) {
	location := mustGeoPoint(t, 55.75, 37.61)
	hours := outlet.OperatingHours{
		time.Tuesday: {Open: "09:00", Close: "18:00"},
	}

	o, err := outlet.NewOutlet(kernel.NewUUID(), "Kitchen", location, hours)
	require.NoError(t, err)

	t.Run("within_window", func(t *testing.T) {
		assert.True(t, o.IsOpenAt(tuesdayAt(9, 0)))
		assert.True(t, o.IsOpenAt(tuesdayAt(12, 30)))
		assert.True(t, o.IsOpenAt(tuesdayAt(17, 59)))
	})

	t.Run("outside_window", func(t *testing.T) {
		assert.False(t, o.IsOpenAt(tuesdayAt(8, 59)))
		assert.False(t, o.IsOpenAt(tuesdayAt(18, 0))) // close is exclusive
		assert.False(t, o.IsOpenAt(tuesdayAt(23, 0)))
	})

	t.Run("weekday_without_entry_is_closed", func(t *testing.T) {
		wednesday := tuesdayAt(12, 0).AddDate(0, 0, 1)
		assert.False(t, o.IsOpenAt(wednesday))
	})

	t.Run("zero_day_hours_means_closed_all_day", func(t *testing.T) {
		closed, err := outlet.NewOutlet(kernel.NewUUID(), "Kitchen", location, outlet.OperatingHours{
			time.Tuesday: {},
		})
		require.NoError(t, err)

		assert.False(t, closed.IsOpenAt(tuesdayAt(12, 0)))
	})

	t.Run("nil_hours_means_always_open", func(t *testing.T) {
		always, err := outlet.NewOutlet(kernel.NewUUID(), "Kitchen", location, nil)
		require.NoError(t, err)

		assert.True(t, always.IsOpenAt(tuesdayAt(3, 0)))
	})

	t.Run("malformed_window_counts_as_closed", func(t *testing.T) {
		broken, err := outlet.NewOutlet(kernel.NewUUID(), "Kitchen", location, outlet.OperatingHours{
			time.Tuesday: {Open: "soon", Close: "late"},
		})
		require.NoError(t, err)

		assert.False(t, broken.IsOpenAt(tuesdayAt(12, 0)))
	})
}

func TestOutlet_IsEligibleAt(t *testing.T) {
	location := mustGeoPoint(t, 55.75, 37.61)

	o, err := outlet.NewOutlet(kernel.NewUUID(), "Kitchen", location, nil)
	require.NoError(t, err)

	assert.True(t, o.IsEligibleAt(tuesdayAt(12, 0)))

	o.Deactivate()
	assert.False(t, o.IsEligibleAt(tuesdayAt(12, 0)))

	o.Activate()
	assert.True(t, o.IsEligibleAt(tuesdayAt(12, 0)))
}

func TestRestoreOutlet(t *testing.T) {
	location := mustGeoPoint(t, 55.75, 37.61)

	o, err := outlet.RestoreOutlet(kernel.NewUUID(), "Kitchen", location, false, nil)

	require.NoError(t, err)
	assert.False(t, o.IsActive())
}
