// Package agent implements the delivery agent (driver) aggregate. An agent is
// a specialized actor with a working status, a last known position and a home
// outlet. Agents are eligible for assignment only while active and available.
package agent

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrAgentIsNotConstructed is returned when using an improperly
	// initialized Agent.
	ErrAgentIsNotConstructed = errors.New("Agent must be created via NewAgent constructor")

	// ErrNameIsRequired is returned when creating an agent without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
)

// WorkStatus is the agent's availability for new deliveries.
type WorkStatus int

const (
	// StatusUnknown catches uninitialized WorkStatus values.
	StatusUnknown WorkStatus = iota

	// Available means the agent can take a new delivery.
	Available

	// Busy means the agent is carrying an active delivery.
	Busy
)

// String returns the lowercase name of the status.
func (s WorkStatus) String() string {
	switch s {
	case Available:
		return "available"
	case Busy:
		return "busy"
	default:
		return "unknown"
	}
}

// WorkStatusFromString parses the lowercase name of a status. Returns an
// error for unrecognized values.
func WorkStatusFromString(s string) (WorkStatus, error) {
	switch s {
	case "available":
		return Available, nil
	case "busy":
		return Busy, nil
	default:
		return StatusUnknown, errs.NewValueIsInvalidErrorWithCause("workStatus",
			fmt.Errorf("%q is not a valid work status", s))
	}
}

// Validate checks that the WorkStatus is one of the defined values.
func (s WorkStatus) Validate() error {
	if s != Available && s != Busy {
		return errs.NewValueIsInvalidErrorWithCause("workStatus",
			fmt.Errorf("%d is not a valid work status", s))
	}
	return nil
}

// Agent is a delivery driver attached to a home outlet.
type Agent struct {
	id           kernel.UUID
	name         string
	status       WorkStatus
	location     kernel.GeoPoint
	homeOutletID kernel.UUID
	active       bool

	isConstructed bool
}

// NewAgent creates an active, available agent at the given position.
func NewAgent(id kernel.UUID, name string, location kernel.GeoPoint, homeOutletID kernel.UUID) (*Agent, error) {
	a := &Agent{
		status:        Available,
		active:        true,
		isConstructed: true,
	}

	if err := errors.Join(
		a.setID(id),
		a.setName(name),
		a.setLocation(location),
		a.setHomeOutletID(homeOutletID),
	); err != nil {
		return nil, err
	}

	return a, nil
}

// RestoreAgent reconstructs an agent aggregate from persistence.
func RestoreAgent(
	id kernel.UUID,
	name string,
	status WorkStatus,
	location kernel.GeoPoint,
	homeOutletID kernel.UUID,
	active bool,
) (*Agent, error) {
	a := &Agent{
		isConstructed: true,
	}

	if err := errors.Join(
		a.setID(id),
		a.setName(name),
		status.Validate(),
		a.setLocation(location),
		a.setHomeOutletID(homeOutletID),
	); err != nil {
		return nil, err
	}

	a.status = status
	a.active = active
	return a, nil
}

// Validate ensures the Agent was created through a constructor.
func (a *Agent) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrAgentIsNotConstructed
	}
	return nil
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() kernel.UUID {
	return a.id
}

// Name returns the agent's display name.
func (a *Agent) Name() string {
	return a.name
}

// Status returns the agent's availability status.
func (a *Agent) Status() WorkStatus {
	return a.status
}

// Location returns the agent's last known position.
func (a *Agent) Location() kernel.GeoPoint {
	return a.location
}

// HomeOutletID returns the outlet the agent operates from.
func (a *Agent) HomeOutletID() kernel.UUID {
	return a.homeOutletID
}

// IsActive reports whether the agent is on shift.
func (a *Agent) IsActive() bool {
	return a.active
}

// IsEligible reports whether the agent can take a new delivery: on shift and
// not already carrying one.
func (a *Agent) IsEligible() bool {
	return a.active && a.status == Available
}

// TakeDelivery marks the agent busy. Returns an error when the agent is not
// eligible for a new delivery.
func (a *Agent) TakeDelivery() error {
	if !a.IsEligible() {
		return errs.NewValueIsInvalidErrorWithCause("agent",
			fmt.Errorf("agent %s is not eligible for a delivery", a.id))
	}

	a.status = Busy
	return nil
}

// CompleteDelivery returns the agent to the available pool.
func (a *Agent) CompleteDelivery() {
	a.status = Available
}

// SetStatus overrides the agent's availability, for self-reported status
// changes from the driver app.
func (a *Agent) SetStatus(status WorkStatus) error {
	if err := status.Validate(); err != nil {
		return err
	}

	a.status = status
	return nil
}

// MoveTo updates the agent's last known position.
func (a *Agent) MoveTo(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}

	a.location = point
	return nil
}

func (a *Agent) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	a.id = id
	return nil
}

func (a *Agent) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}

	a.name = name
	return nil
}

func (a *Agent) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}

	a.location = location
	return nil
}

func (a *Agent) setHomeOutletID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	a.homeOutletID = id
	return nil
}
