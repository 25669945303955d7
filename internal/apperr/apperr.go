// Package apperr defines the closed set of error kinds the API maps to
// HTTP responses.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for response mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindMethodNotAllowed
	KindUpstreamFetch
	KindPersistence
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindUpstreamFetch:
		return "upstream_fetch"
	case KindPersistence:
		return "persistence"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Reasons. Match with errors.Is.
var (
	ErrUnsupportedMethod      = errors.New("unsupported method")
	ErrMissingField           = errors.New("missing field")
	ErrInvalidField           = errors.New("invalid field")
	ErrMalformedBody          = errors.New("malformed body")
	ErrPriceFetchFailed       = errors.New("price fetch failed")
	ErrPriceNotFound          = errors.New("price not found")
	ErrPersistenceWriteFailed = errors.New("persistence write failed")
	ErrPersistenceReadFailed  = errors.New("persistence read failed")
	ErrSecretUnavailable      = errors.New("secret unavailable")
)

var reasonKinds = map[error]Kind{
	ErrUnsupportedMethod:      KindMethodNotAllowed,
	ErrMissingField:           KindValidation,
	ErrInvalidField:           KindValidation,
	ErrMalformedBody:          KindValidation,
	ErrPriceFetchFailed:       KindUpstreamFetch,
	ErrPriceNotFound:          KindUpstreamFetch,
	ErrPersistenceWriteFailed: KindPersistence,
	ErrPersistenceReadFailed:  KindPersistence,
	ErrSecretUnavailable:      KindConfiguration,
}

// Error is a classified failure. Msg is safe to show to callers of
// validation and upstream failures; Err is the underlying cause.
type Error struct {
	Reason error
	Msg    string
	Err    error
}

// New returns a classified error for one of the reason sentinels.
func New(reason error, cause error, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == e.Reason
}

// Kind returns the kind derived from the reason.
func (e *Error) Kind() Kind {
	return reasonKinds[e.Reason]
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	return KindUnknown
}

// PublicMessage returns the caller-safe message of a classified error.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
