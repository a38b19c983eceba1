package room

import (
	"errors"
	"fmt"
)

// Code is a machine-readable rule violation code sent back to the caller.
type Code string

const (
	CodeUnknown             Code = "UNKNOWN"
	CodeNotFound            Code = "NOT_FOUND"
	CodeInvalidPhase        Code = "INVALID_PHASE"
	CodeForbidden           Code = "FORBIDDEN"
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeInsufficientPlayers Code = "INSUFFICIENT_PLAYERS"
)

// Error is a rejected command. The room it was issued against is unchanged.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error carrying the same code, so the sentinels below work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrNotFound            = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInvalidPhase        = &Error{Code: CodeInvalidPhase, Message: "invalid game state"}
	ErrForbidden           = &Error{Code: CodeForbidden, Message: "not permitted"}
	ErrInvalidInput        = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrInsufficientPlayers = &Error{Code: CodeInsufficientPlayers, Message: "at least one other player must be ready"}
)

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the rule violation code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
