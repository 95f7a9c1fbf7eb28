// Package errdefs defines the typed errors returned by Galley's core
// operations and the uniform payload they are reported with.
package errdefs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for callers and for the CLI exit payload.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindPrecondition Kind = "precondition"
	KindInProgress   Kind = "in_progress"
	KindNotAllowed   Kind = "not_allowed"
	KindInvalidInput Kind = "invalid_input"
	KindRemote       Kind = "remote"
	KindInternal     Kind = "internal"
)

// Error is the error type shared by all Galley packages.
type Error struct {
	Kind     Kind
	Resource string   // e.g. "session", "component"
	IDs      []string // offending identifiers
	Message  string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if len(e.IDs) > 0 && !strings.Contains(e.Message, e.IDs[0]) {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.IDs, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource.
func NotFound(resource string, ids ...string) *Error {
	return &Error{
		Kind:     KindNotFound,
		Resource: resource,
		IDs:      ids,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

// Precondition reports that an operation cannot run in the current state.
func Precondition(format string, args ...any) *Error {
	return &Error{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}

// InProgress reports that another operation holds the session.
func InProgress(sessionID string) *Error {
	return &Error{
		Kind:     KindInProgress,
		Resource: "session",
		IDs:      []string{sessionID},
		Message:  fmt.Sprintf("another provisioning operation is already running for session %s", sessionID),
	}
}

// NotAllowed reports a rejected command or action.
func NotAllowed(format string, args ...any) *Error {
	return &Error{Kind: KindNotAllowed, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput reports malformed caller input.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Remote wraps a failure returned by a remote service.
func Remote(err error, format string, args ...any) *Error {
	return &Error{Kind: KindRemote, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }
func IsPrecondition(err error) bool { return err != nil && KindOf(err) == KindPrecondition }
func IsInProgress(err error) bool { return err != nil && KindOf(err) == KindInProgress }
func IsNotAllowed(err error) bool { return err != nil && KindOf(err) == KindNotAllowed }
func IsInvalidInput(err error) bool { return err != nil && KindOf(err) == KindInvalidInput }

// Payload is the uniform structured form of an error.
type Payload struct {
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	IDs     []string `json:"ids,omitempty"`
}

// PayloadOf converts any error to a Payload.
func PayloadOf(err error) Payload {
	if err == nil {
		return Payload{}
	}
	p := Payload{Kind: KindInternal, Message: err.Error()}
	var e *Error
	if errors.As(err, &e) {
		p.Kind = e.Kind
		p.IDs = e.IDs
	}
	return p
}
