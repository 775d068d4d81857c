// Package auth provides session state management and service integration for the CLI.
// It resolves an initial credential set, keeps the current user in sync with the
// tokens, refreshes access tokens shortly before they expire and exposes login and
// logout to consumers.
//
// Session state is three-valued: Unresolved (not determined yet), None (determined,
// logged out) and Present (a value is available).
package auth

import "fmt"

// Status is the resolution status of a State.
type Status uint8

const (
	// StatusUnresolved means the value has not been determined yet.
	StatusUnresolved Status = iota
	// StatusNone means the value was determined to be absent.
	StatusNone
	// StatusPresent means a value is available.
	StatusPresent
)

func (s Status) String() string {
	switch s {
	case StatusUnresolved:
		return "unresolved"
	case StatusNone:
		return "none"
	case StatusPresent:
		return "present"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// State is a tri-state holder distinguishing "not checked yet" from "checked, absent".
// The zero value is Unresolved.
type State[T any] struct {
	status Status
	value  T
}

// Unresolved returns a State that has not been determined.
func Unresolved[T any]() State[T] { return State[T]{status: StatusUnresolved} }

// None returns a resolved, empty State.
func None[T any]() State[T] { return State[T]{status: StatusNone} }

// Present returns a State holding v.
func Present[T any](v T) State[T] { return State[T]{status: StatusPresent, value: v} }

// Status reports the resolution status.
func (s State[T]) Status() Status { return s.status }

// Get returns the value and whether it is present.
func (s State[T]) Get() (T, bool) { return s.value, s.status == StatusPresent }

// IsResolved reports whether the state is None or Present.
func (s State[T]) IsResolved() bool { return s.status != StatusUnresolved }

// IsPresent reports whether a value is available.
func (s State[T]) IsPresent() bool { return s.status == StatusPresent }

func (s State[T]) String() string {
	if s.status == StatusPresent {
		return fmt.Sprintf("present(%v)", s.value)
	}
	return s.status.String()
}
