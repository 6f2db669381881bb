package directbuf

import (
	"strings"
)

// Code categorizes an Error.
type Code string

const (
	// CodeInvalidArgument reports an unknown kind, a missing or malformed
	// coordinate count, or a bad channel list.
	CodeInvalidArgument Code = "invalid_argument"

	// CodeAllocationFailure reports that native memory could not be obtained.
	CodeAllocationFailure Code = "allocation_failure"

	// CodeIndexOutOfRange reports view access outside [0, count) x [0, width).
	CodeIndexOutOfRange Code = "index_out_of_range"

	// CodeReleased reports access to a view whose arena was released.
	CodeReleased Code = "released"
)

// Sentinels for errors.Is. Any *Error with the same Code matches.
var (
	ErrInvalidArgument   = &Error{Code: CodeInvalidArgument}
	ErrAllocationFailure = &Error{Code: CodeAllocationFailure}
	ErrIndexOutOfRange   = &Error{Code: CodeIndexOutOfRange}
	ErrReleased          = &Error{Code: CodeReleased}
)

// Error is the structured error returned by directbuf operations.
type Error struct {
	// Op is the operation that failed ("allocate", "view.Set", "pack", ...).
	Op string

	// Code categorizes the failure.
	Code Code

	// Detail is a human-readable description.
	Detail string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("directbuf: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func newError(op string, code Code, detail string, cause error) *Error {
	return &Error{Op: op, Code: code, Detail: detail, Cause: cause}
}
