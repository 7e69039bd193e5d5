package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors so transports can map them without
// re-deriving the reason.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "not_found"
	KindValidation      ErrorKind = "validation"
	KindForbidden       ErrorKind = "forbidden"
	KindDeserialization ErrorKind = "deserialization"
)

// Error is a recoverable domain error.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithCode returns a copy of the error tagged with a machine-readable code.
func (e *Error) WithCode(code string) *Error {
	if e == nil {
		return nil
	}
	out := *e
	out.Code = code
	return &out
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func Validationf(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func Forbiddenf(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

func Deserializationf(format string, args ...any) *Error {
	return newError(KindDeserialization, format, args...)
}

// WrapDeserialization marks err as a malformed stored payload.
func WrapDeserialization(err error, format string, args ...any) *Error {
	return &Error{Kind: KindDeserialization, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the domain kind of err, or "" for non-domain errors.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr != nil {
		return domainErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given domain kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// Blocker names one relationship that vetoes a status transition.
type Blocker struct {
	RelationshipID   string     `json:"relationship_id"`
	RelationshipType string     `json:"relationship_type"`
	SourceTaskID     string     `json:"source_task_id"`
	SourceTaskTitle  string     `json:"source_task_title"`
	SourceStatus     TaskStatus `json:"source_status"`
}

// TransitionBlockedError reports a status change vetoed by blocking relationships.
type TransitionBlockedError struct {
	TaskID   string
	Proposed TaskStatus
	Blockers []Blocker
	cause    *Error
}

// NewTransitionBlockedError builds the forbidden error for a vetoed transition.
func NewTransitionBlockedError(taskID string, proposed TaskStatus, message string, blockers []Blocker) *TransitionBlockedError {
	return &TransitionBlockedError{
		TaskID:   taskID,
		Proposed: proposed,
		Blockers: blockers,
		cause:    &Error{Kind: KindForbidden, Code: "transition_blocked", Message: message},
	}
}

func (e *TransitionBlockedError) Error() string {
	if e == nil || e.cause == nil {
		return ""
	}
	return e.cause.Error()
}

func (e *TransitionBlockedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}
