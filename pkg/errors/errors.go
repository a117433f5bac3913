package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable, machine-readable error category returned to API clients.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindValidation   Kind = "VALIDATION_ERROR"
	KindConflict     Kind = "CONFLICT"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindInternal     Kind = "INTERNAL"
)

// Error carries a Kind and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation builds a 400 error for input that failed validation.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a kind while keeping message client-safe.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

var (
	ErrRouteNotFound           = New(KindNotFound, "Not found")
	ErrNFTNotFound             = New(KindNotFound, "NFT not found")
	ErrUserNotFound            = New(KindNotFound, "User not found")
	ErrInsufficientBalance     = New(KindValidation, "Insufficient balance")
	ErrInvalidBody             = New(KindValidation, "invalid request body")
	ErrRequestAlreadyProcessed = New(KindConflict, "request already processed")
	ErrUnauthorized            = New(KindUnauthorized, "unauthorized")
	ErrForbidden               = New(KindForbidden, "forbidden")
	ErrInternal                = New(KindInternal, "Internal server error")
	ErrNilNFT                  = errors.New("nft is nil")
)

// KindOf reports the Kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-facing message for err. Internal errors never expose their cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return ErrInternal.Message
}

func Status(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
