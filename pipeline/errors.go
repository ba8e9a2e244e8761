package pipeline

import (
	"errors"

	"qproof.io/qpo/model"
)

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
// Error() strings are human-readable and may evolve; they never contain raw
// sensitive input bytes.
type Kind string

const (
	KindInvalidInput       Kind = "InvalidInput"
	KindBackendUnavailable Kind = "BackendUnavailable"
	KindVerificationFailed Kind = "VerificationFailed"
	KindUnknownAttack      Kind = "UnknownAttack"
	// KindCanceled marks a run aborted by the caller's context. The wrapped
	// cause is the context error, so errors.Is(err, context.Canceled) holds.
	KindCanceled Kind = "Canceled"
	KindInternal Kind = "Internal"
)

// Error is the pipeline's structured error type.
//
// RuleID is a stable identifier (e.g., QPO-IN-001, QPO-GATE-001) naming the
// violated contract.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

func wrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return newError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}

// Coded maps a pipeline error onto the boundary error vocabulary for
// serialization at the CLI/RPC surface.
func Coded(err error) *model.CodedError {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		return model.NewError(model.ErrInternal, err.Error())
	}
	code := model.ErrInternal
	switch e.Kind {
	case KindInvalidInput:
		code = model.ErrInvalidInput
	case KindBackendUnavailable:
		code = model.ErrBackendUnavailable
	case KindVerificationFailed:
		code = model.ErrVerificationFailed
	case KindUnknownAttack:
		code = model.ErrUnknownAttackType
	}
	return model.NewError(code, e.Message)
}
