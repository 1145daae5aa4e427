package domain

import "errors"

// Kind classifies every failure the users module can surface to a caller.
type Kind string

const (
	KindInvalidRequest   Kind = "invalid_request"
	KindUserNotFound     Kind = "user_not_found"
	KindMethodNotAllowed Kind = "method_not_allowed"
	KindOperationFailed  Kind = "operation_failed"
)

// Issue describes a single field-level validation failure.
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error is the error type returned across the module boundary.
// Two Errors match under errors.Is when their kinds are equal, so callers
// can test against the sentinels below.
type Error struct {
	Kind    Kind
	Message string
	Issues  []Issue
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidRequest   = &Error{Kind: KindInvalidRequest, Message: "invalid request"}
	ErrUserNotFound     = &Error{Kind: KindUserNotFound, Message: "User not found"}
	ErrMethodNotAllowed = &Error{Kind: KindMethodNotAllowed, Message: "method not allowed"}
	ErrOperationFailed  = &Error{Kind: KindOperationFailed, Message: "operation failed"}
)

func InvalidRequest(message string, issues ...Issue) *Error {
	return &Error{Kind: KindInvalidRequest, Message: message, Issues: issues}
}

func UserNotFound(message string) *Error {
	return &Error{Kind: KindUserNotFound, Message: message}
}

func MethodNotAllowed(message string) *Error {
	return &Error{Kind: KindMethodNotAllowed, Message: message}
}

// OperationFailed carries only a caller-safe message. The underlying cause
// is logged where it happens and never attached.
func OperationFailed(message string) *Error {
	return &Error{Kind: KindOperationFailed, Message: message}
}

// KindOf reports the Kind of err, or KindOperationFailed for anything that is
// not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOperationFailed
}

// IsDomain reports whether err is a recognized domain error that may be
// passed to the caller as-is.
func IsDomain(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrUserNotFound)
}

// Surface returns err unchanged when it is a domain error and an
// OperationFailed carrying message otherwise.
func Surface(err error, message string) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return OperationFailed(message)
}
