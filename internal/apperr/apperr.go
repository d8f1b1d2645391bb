package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a rule failure independently of any transport.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "scheduling_conflict"
	KindInvalidState Kind = "invalid_state"
	KindOverpayment  Kind = "overpayment"
	KindNotFound     Kind = "not_found"
)

// Error is the typed failure returned by the rule engines and use cases.
// Code is a stable snake_case identifier, Message is human readable and
// Fields carries per-field validation messages.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

// ValidationFields builds a validation error listing every offending field.
func ValidationFields(fields map[string]string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "validation_failed",
		Message: "invalid request data",
		Fields:  fields,
	}
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func InvalidState(code, message string) *Error {
	return New(KindInvalidState, code, message)
}

func Overpayment(code, message string) *Error {
	return New(KindOverpayment, code, message)
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code string) bool {
	if ae, ok := As(err); ok {
		return ae.Code == code
	}
	return false
}
