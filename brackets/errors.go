package brackets

import (
	"errors"
	"fmt"
)

// Kind sentinels. Every engine error unwraps to exactly one of them, so callers
// can branch with errors.Is(err, brackets.ErrConflict).
var (
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("conflict")
	ErrState            = errors.New("invalid state")
	ErrInsufficientData = errors.New("insufficient data")
	ErrNotFound         = errors.New("not found")
)

// Error carries a machine-readable Code next to the human message.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NewError(kind error, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Code extracts the reason code of an engine error, or "" for foreign errors.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

const (
	CodeInvalidSet            = "invalid_set"
	CodeRequiresTiebreak      = "requires_tiebreak"
	CodeInvalidSuperTiebreak  = "invalid_super_tiebreak"
	CodeSetAfterDecided       = "set_after_decided"
	CodeTooManySets           = "too_many_sets"
	CodeIncompleteResult      = "incomplete_result"
	CodeInsufficientPairs     = "insufficient_pairs"
	CodeInsufficientQualifier = "insufficient_qualifiers"
	CodeInvalidZoneSize       = "invalid_zone_size"
	CodeBracketTooLarge       = "bracket_too_large"
	CodeAlreadyGenerated      = "already_generated"
	CodeInvalidTransition     = "invalid_transition"
)

// InvalidResultError reports a set or match score that breaks padel rules.
func InvalidResultError(code, format string, args ...any) *Error {
	return NewError(ErrValidation, code, format, args...)
}

// IncompleteResultError reports a result where nobody has won two sets yet.
func IncompleteResultError(setsA, setsB int) *Error {
	return NewError(ErrValidation, CodeIncompleteResult, "result is incomplete: sets %d-%d, a side must win 2 sets", setsA, setsB)
}

func InsufficientPairsError(count int) *Error {
	return NewError(ErrInsufficientData, CodeInsufficientPairs, "at least 2 confirmed pairs are required, got %d", count)
}

func InsufficientQualifiersError(count int) *Error {
	return NewError(ErrInsufficientData, CodeInsufficientQualifier, "at least 2 qualifiers are required, got %d", count)
}

func AlreadyGeneratedError(what string) *Error {
	return NewError(ErrConflict, CodeAlreadyGenerated, "%s already generated; delete it explicitly before generating again", what)
}
