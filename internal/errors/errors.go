// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so callers can branch on the category of a failure
// (a rejected action, a misuse of the API, an unreachable store) without parsing text.
//
// Errors of the same Kind match each other under errors.Is, which lets packages
// export sentinel values while still wrapping the underlying cause.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// AlreadyLoggedIn indicates a login attempt while a session is present.
	AlreadyLoggedIn Kind = "already_logged_in"
	// NotLoggedIn indicates an action that requires a session when none exists.
	NotLoggedIn Kind = "not_logged_in"
	// LoginFailed indicates the auth service rejected the credentials.
	LoginFailed Kind = "login_failed"
	// OutsideScope indicates the session accessor was used without a service in scope.
	OutsideScope Kind = "outside_scope"
	// StorageUnavailable indicates the OS credential store could not be opened.
	StorageUnavailable Kind = "storage_unavailable"
	// InvalidConfig indicates a configuration value that cannot be used.
	InvalidConfig Kind = "invalid_config"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *E) Unwrap() error { return e.Err }

// Is reports whether target is an *E of the same kind.
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}
