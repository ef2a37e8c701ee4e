// Package guard provides the constructor guard pattern for value objects and
// commands. Embedding a ConstructorGuard in a struct makes the zero value
// detectable: only instances created through a constructor that calls
// NewConstructorGuard pass validation.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the guard is a zero
// value and no custom error was supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks an object as properly constructed.
// The zero value is "not constructed" and fails Validate.
type ConstructorGuard struct {
	constructed bool
}

// NewConstructorGuard creates a guard in the "constructed" state.
// Constructors assign it to the guarded object as their last step.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{constructed: true}
}

// Validate returns nil for a properly constructed guard.
// For a zero-value guard it returns notConstructed, or
// ErrDefaultConstructorGuard when notConstructed is nil.
func (g ConstructorGuard) Validate(notConstructed error) error {
	if g.constructed {
		return nil
	}

	if notConstructed != nil {
		return notConstructed
	}

	return ErrDefaultConstructorGuard
}
