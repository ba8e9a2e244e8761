package model

import "fmt"

type ErrorCode string

const (
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrVerificationFailed ErrorCode = "VERIFICATION_FAILED"
	ErrUnknownAttackType  ErrorCode = "UNKNOWN_ATTACK_TYPE"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrInternal           ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
//
// Messages never include raw sensitive input bytes.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}
