package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code is the stable machine readable identifier returned in error envelopes.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodePayment       Code = "PAYMENT_DECLINED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code surfaces over HTTP.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

const (
	retryable   = true
	withDetails = true
)

func meta(status int, retry bool, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, Retryable: retry, PublicMessage: public, DetailsAllowed: details}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:    meta(http.StatusBadRequest, false, "validation failed", withDetails),
	CodeUnauthorized:  meta(http.StatusUnauthorized, false, "authentication required", false),
	CodePayment:       meta(http.StatusPaymentRequired, false, "payment declined", withDetails),
	CodeForbidden:     meta(http.StatusForbidden, false, "access denied", false),
	CodeNotFound:      meta(http.StatusNotFound, false, "resource not found", false),
	CodeConflict:      meta(http.StatusConflict, false, "conflict detected", false),
	CodeStateConflict: meta(http.StatusUnprocessableEntity, false, "state transition disallowed", withDetails),
	CodeIdempotency:   meta(http.StatusConflict, false, "idempotency key reused", withDetails),
	CodeRateLimit:     meta(http.StatusTooManyRequests, false, "rate limit exceeded", false),
	CodeInternal:      meta(http.StatusInternalServerError, retryable, "internal server error", false),
	CodeDependency:    meta(http.StatusServiceUnavailable, retryable, "dependency unavailable", withDetails),
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if m, ok := metadataByCode[code]; ok {
		return m
	}
	return metadataByCode[CodeInternal]
}

// Error is the typed error every service returns across package boundaries.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf formats the message like fmt.Sprintf.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap keeps err reachable through errors.Is and errors.As.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails attaches client facing details. They are only rendered when the code allows it.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries code anywhere in its chain.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// StatusOf maps err to an HTTP status. Untyped errors are 500s.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return MetadataFor(As(err).Code()).HTTPStatus
}

// IsRetryable reports whether the caller may retry the same request unchanged.
func IsRetryable(err error) bool {
	return err != nil && MetadataFor(As(err).Code()).Retryable
}
