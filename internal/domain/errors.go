package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable machine-readable kind of a domain error.
type ErrorCode string

const (
	CodeUnauthenticated  ErrorCode = "unauthenticated"
	CodeNotFound         ErrorCode = "not_found"
	CodeInvalidInput     ErrorCode = "invalid_input"
	CodeInvalidSeatCount ErrorCode = "invalid_seat_count"
	CodeCapacityExceeded ErrorCode = "capacity_exceeded"
	CodeConflict         ErrorCode = "conflict"
	CodeStorageFailure   ErrorCode = "storage_failure"
)

type Error struct {
	Code    ErrorCode
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

func E(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the domain error code, or storage_failure for
// errors that did not originate in the domain.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeStorageFailure
}
