package evaluator

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why an analysis failed.
type Kind string

const (
	// KindInput: the image was rejected before any provider call.
	KindInput Kind = "input"
	// KindProvider: the provider call itself failed (network, auth, quota, timeout).
	KindProvider Kind = "provider"
	// KindSchema: the call succeeded but the response did not match the schema.
	KindSchema Kind = "schema"
)

// Error is a classified analysis failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func inputError(msg string) *Error {
	return &Error{Kind: KindInput, Message: msg}
}

func providerError(msg string, err error) *Error {
	return &Error{Kind: KindProvider, Message: msg, Err: err}
}

func schemaError(format string, args ...any) *Error {
	return &Error{Kind: KindSchema, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// StatusCode maps an analysis error to an HTTP status code.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindInput:
		return http.StatusBadRequest
	case KindProvider, KindSchema:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
