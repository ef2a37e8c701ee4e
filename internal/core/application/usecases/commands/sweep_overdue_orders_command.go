package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrSweepOverdueOrdersCommandIsNotConstructed = errors.New(
	"SweepOverdueOrdersCommand must be created via NewSweepOverdueOrdersCommand constructor",
)

// SweepOverdueOrdersCommand requests one sweep for deliveries whose
// estimated arrival has passed without the order reaching a terminal status.
type SweepOverdueOrdersCommand struct { //nolint:recvcheck //using for validation
	now time.Time

	guard guard.ConstructorGuard
}

// NewSweepOverdueOrdersCommand creates a sweep command anchored at now.
func NewSweepOverdueOrdersCommand(now time.Time) (SweepOverdueOrdersCommand, error) {
	if now.IsZero() {
		return SweepOverdueOrdersCommand{}, errs.NewValueIsRequiredError("now")
	}

	return SweepOverdueOrdersCommand{
		now:   now,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SweepOverdueOrdersCommand) Validate() error {
	return c.guard.Validate(ErrSweepOverdueOrdersCommandIsNotConstructed)
}

// Now returns the sweep anchor time.
func (c SweepOverdueOrdersCommand) Now() time.Time {
	return c.now
}
