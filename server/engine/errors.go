package engine

import (
	"errors"
	"fmt"
)

// Code classifies round engine failures for callers and transports.
type Code string

const (
	CodePhaseViolation  Code = "PHASE_VIOLATION"
	CodeInvalidBet      Code = "INVALID_BET"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeDeckExhausted   Code = "DECK_EXHAUSTED"
	CodeConflict        Code = "CONFLICT"
)

// Error is a coded domain error. Two errors match under errors.Is when their
// codes are equal, so the Err* values below work as sentinels.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrPhaseViolation  = &Error{Code: CodePhaseViolation, Message: "action not allowed in this phase"}
	ErrInvalidBet      = &Error{Code: CodeInvalidBet, Message: "invalid bet amount"}
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrNotFound        = &Error{Code: CodeNotFound, Message: "not found"}
	ErrDeckExhausted   = &Error{Code: CodeDeckExhausted, Message: "no more cards available in the deck"}
	ErrConflict        = &Error{Code: CodeConflict, Message: "game was modified concurrently"}
)

// Errorf builds a coded error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a coded error around an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
