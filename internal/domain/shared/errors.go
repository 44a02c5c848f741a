package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures into a closed set of categories.
// Aggregates raise DomainErrors at the point of mutation; domain services
// convert them into tagged Results before returning to callers.
type ErrorKind int

const (
	// ErrorKindUnknown covers collaborator failures with no better classification
	ErrorKindUnknown ErrorKind = iota

	// ErrorKindArgumentInvalid indicates malformed or missing input to a constructor-like call
	ErrorKindArgumentInvalid

	// ErrorKindIllegalState indicates an operation that is not legal in the aggregate's current state
	ErrorKindIllegalState

	// ErrorKindUnsupported indicates an operation not applicable to this variant (e.g. fees on a logon)
	ErrorKindUnsupported

	// ErrorKindNotFound indicates a referenced entity is absent
	ErrorKindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindArgumentInvalid:
		return "ARGUMENT_INVALID"
	case ErrorKindIllegalState:
		return "ILLEGAL_STATE"
	case ErrorKindUnsupported:
		return "UNSUPPORTED"
	case ErrorKindNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// DomainError is a kind-tagged in-process error raised by aggregate guards
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError of the same kind when the target carries no message
func (e DomainError) Is(target error) bool {
	t, ok := target.(DomainError)
	if !ok {
		return false
	}
	if t.Message == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// NewArgumentInvalid builds an ArgumentInvalid domain error
func NewArgumentInvalid(format string, args ...interface{}) error {
	return DomainError{Kind: ErrorKindArgumentInvalid, Message: fmt.Sprintf(format, args...)}
}

// NewIllegalState builds an IllegalState domain error
func NewIllegalState(format string, args ...interface{}) error {
	return DomainError{Kind: ErrorKindIllegalState, Message: fmt.Sprintf(format, args...)}
}

// NewUnsupported builds an Unsupported domain error
func NewUnsupported(format string, args ...interface{}) error {
	return DomainError{Kind: ErrorKindUnsupported, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound builds a NotFound domain error
func NewNotFound(format string, args ...interface{}) error {
	return DomainError{Kind: ErrorKindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err, defaulting to ErrorKindUnknown
func KindOf(err error) ErrorKind {
	var domainErr DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ErrorKindUnknown
}
