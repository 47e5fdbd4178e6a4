// Package apperr holds the error taxonomy shared by the card service layers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindDuplicateKey
	KindNotFound
	KindUnauthenticated
	KindInvalidCredentials
	KindInvalidToken
	KindExpiredToken
	KindForbidden
	KindAccountLocked
)

var kindNames = map[Kind]string{
	KindUnexpected:         "unexpected",
	KindValidation:         "validation",
	KindDuplicateKey:       "duplicate_key",
	KindNotFound:           "not_found",
	KindUnauthenticated:    "unauthenticated",
	KindInvalidCredentials: "invalid_credentials",
	KindInvalidToken:       "invalid_token",
	KindExpiredToken:       "expired_token",
	KindForbidden:          "forbidden",
	KindAccountLocked:      "account_locked",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Status maps a kind to the HTTP status code the API answers with.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindDuplicateKey:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated, KindInvalidCredentials, KindInvalidToken, KindExpiredToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindAccountLocked:
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to API callers.
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending field for duplicate key errors.
	Field string
	// Details carries field level validation messages.
	Details []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Details) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Details, "; "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// WithMessage replaces the caller facing message.
func (e *Error) WithMessage(message string) *Error {
	e.Message = message
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(details ...string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation error", Details: details}
}

// Duplicate reports a unique constraint violation on field.
func Duplicate(field string, err error) *Error {
	msg := "resource already exists"
	if field != "" {
		msg = field + " already exists"
	}
	return &Error{Kind: KindDuplicateKey, Message: msg, Field: field, Err: err}
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnexpected when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// IsDuplicateOf reports whether err is a duplicate key violation on field.
func IsDuplicateOf(err error, field string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == KindDuplicateKey && e.Field == field
}

// Public returns the caller facing message and validation details of err.
func Public(err error) (string, []string) {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindUnexpected {
		return e.Message, e.Details
	}
	if errors.As(err, &e) && e.Message != "" {
		return e.Message, nil
	}
	return "Server Error", nil
}
