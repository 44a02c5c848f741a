package shared

import (
	"errors"
	"fmt"
)

// ResultStatus is the tag callers branch on. Exceptions never cross a
// domain-service boundary; every public entry point returns one of these.
type ResultStatus int

const (
	ResultSuccess ResultStatus = iota
	ResultFailed
	ResultNotFound
)

func (s ResultStatus) String() string {
	switch s {
	case ResultSuccess:
		return "SUCCESS"
	case ResultFailed:
		return "FAILED"
	case ResultNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of a domain-service operation with no return value
type Result struct {
	Status  ResultStatus
	Message string
}

// ResultValue is the outcome of a domain-service operation carrying a value on success
type ResultValue[T any] struct {
	Result
	Value T
}

// Success builds a successful Result
func Success() Result {
	return Result{Status: ResultSuccess}
}

// Failed builds a failed Result with a formatted message
func Failed(format string, args ...interface{}) Result {
	return Result{Status: ResultFailed, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a not-found Result with a formatted message
func NotFound(format string, args ...interface{}) Result {
	return Result{Status: ResultNotFound, Message: fmt.Sprintf(format, args...)}
}

// ResultFromError maps a domain error onto a tagged Result. NotFound errors
// keep their own tag; everything else surfaces as Failed.
func ResultFromError(err error) Result {
	var domainErr DomainError
	if errors.As(err, &domainErr) && domainErr.Kind == ErrorKindNotFound {
		return Result{Status: ResultNotFound, Message: domainErr.Message}
	}
	return Result{Status: ResultFailed, Message: err.Error()}
}

// SuccessValue builds a successful ResultValue carrying value
func SuccessValue[T any](value T) ResultValue[T] {
	return ResultValue[T]{Result: Success(), Value: value}
}

// FailedValue builds a failed ResultValue with a formatted message
func FailedValue[T any](format string, args ...interface{}) ResultValue[T] {
	return ResultValue[T]{Result: Failed(format, args...)}
}

// NotFoundValue builds a not-found ResultValue with a formatted message
func NotFoundValue[T any](format string, args ...interface{}) ResultValue[T] {
	return ResultValue[T]{Result: NotFound(format, args...)}
}

// ValueFromError wraps ResultFromError for value-carrying operations
func ValueFromError[T any](err error) ResultValue[T] {
	return ResultValue[T]{Result: ResultFromError(err)}
}

// IsSuccess reports whether the operation succeeded
func (r Result) IsSuccess() bool {
	return r.Status == ResultSuccess
}

// IsFailed reports whether the operation failed
func (r Result) IsFailed() bool {
	return r.Status == ResultFailed
}

// IsNotFound reports whether the operation targeted an absent entity
func (r Result) IsNotFound() bool {
	return r.Status == ResultNotFound
}
