// Package outlet implements the fulfillment outlet aggregate: a physical
// location with coordinates, an active flag and a per-weekday operating-hours
// table. Assignment strategies only consider outlets that are active and
// currently open.
package outlet

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrOutletIsNotConstructed is returned when using an improperly
	// initialized Outlet.
	ErrOutletIsNotConstructed = errors.New("Outlet must be created via NewOutlet constructor")

	// ErrNameIsRequired is returned when creating an outlet without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
)

// DayHours is the open/close window for one weekday, "HH:MM" 24-hour local
// time. A zero value (empty strings) means closed all day.
type DayHours struct {
	Open  string
	Close string
}

// OperatingHours maps weekdays to their opening window.
type OperatingHours map[time.Weekday]DayHours

// Outlet is a fulfillment location that prepares orders and hosts delivery
// agents.
type Outlet struct {
	id       kernel.UUID
	name     string
	location kernel.GeoPoint
	active   bool
	hours    OperatingHours

	isConstructed bool
}

// NewOutlet creates an active outlet at the given coordinates.
// Hours may be nil, which means the outlet is treated as always open.
func NewOutlet(id kernel.UUID, name string, location kernel.GeoPoint, hours OperatingHours) (*Outlet, error) {
	o := &Outlet{
		active:        true,
		hours:         hours,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setName(name),
		o.setLocation(location),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOutlet reconstructs an outlet aggregate from persistence.
func RestoreOutlet(
	id kernel.UUID,
	name string,
	location kernel.GeoPoint,
	active bool,
	hours OperatingHours,
) (*Outlet, error) {
	o, err := NewOutlet(id, name, location, hours)
	if err != nil {
		return nil, err
	}

	o.active = active
	return o, nil
}

// Validate ensures the Outlet was created through a constructor.
func (o *Outlet) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOutletIsNotConstructed
	}
	return nil
}

// ID returns the outlet's unique identifier.
func (o *Outlet) ID() kernel.UUID {
	return o.id
}

// Name returns the outlet's display name.
func (o *Outlet) Name() string {
	return o.name
}

// Location returns the outlet's coordinates.
func (o *Outlet) Location() kernel.GeoPoint {
	return o.location
}

// IsActive reports whether the outlet currently accepts orders.
func (o *Outlet) IsActive() bool {
	return o.active
}

// Hours returns the operating-hours table, nil for always-open outlets.
func (o *Outlet) Hours() OperatingHours {
	return o.hours
}

// Deactivate removes the outlet from the eligible pool.
func (o *Outlet) Deactivate() {
	o.active = false
}

// Activate returns the outlet to the eligible pool.
func (o *Outlet) Activate() {
	o.active = true
}

// IsOpenAt reports whether the outlet's operating window covers t in t's
// location. Outlets without an hours table are always open; a weekday with a
// zero DayHours is closed all day. Malformed window strings count as closed.
func (o *Outlet) IsOpenAt(t time.Time) bool {
	if o.hours == nil {
		return true
	}

	window, ok := o.hours[t.Weekday()]
	if !ok || window == (DayHours{}) {
		return false
	}

	openMin, err := parseClock(window.Open)
	if err != nil {
		return false
	}
	closeMin, err := parseClock(window.Close)
	if err != nil {
		return false
	}

	nowMin := t.Hour()*60 + t.Minute()
	return nowMin >= openMin && nowMin < closeMin
}

// IsEligibleAt reports whether the outlet can fulfill an order at t:
// active and within operating hours.
func (o *Outlet) IsEligibleAt(t time.Time) bool {
	return o.active && o.IsOpenAt(t)
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, err
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, errs.NewValueIsInvalidError("clock")
	}
	return h*60 + m, nil
}

func (o *Outlet) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	o.id = id
	return nil
}

func (o *Outlet) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}

	o.name = name
	return nil
}

func (o *Outlet) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}

	o.location = location
	return nil
}
