package directbuf

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIs(t *testing.T) {
	err := newError("allocate", CodeInvalidArgument, "bad kind", nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Error("errors.Is(err, ErrInvalidArgument) = false")
	}
	if errors.Is(err, ErrAllocationFailure) {
		t.Error("errors.Is matched a different code")
	}

	wrapped := fmt.Errorf("setup: %w", err)
	if !errors.Is(wrapped, ErrInvalidArgument) {
		t.Error("errors.Is should see through fmt wrapping")
	}

	var e *Error
	if !errors.As(wrapped, &e) || e.Op != "allocate" {
		t.Errorf("errors.As = %+v", e)
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("out of memory")
	tests := []struct {
		err  *Error
		want string
	}{
		{
			newError("allocate", CodeAllocationFailure, "line_2d.coords: 64 bytes", cause),
			"directbuf: allocate: allocation_failure: line_2d.coords: 64 bytes (caused by: out of memory)",
		},
		{
			newError("view.Set", CodeIndexOutOfRange, "", nil),
			"directbuf: view.Set: index_out_of_range",
		},
		{
			&Error{Code: CodeReleased},
			"directbuf: released",
		},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := newError("release", CodeAllocationFailure, "x", cause)
	if !errors.Is(err, cause) {
		t.Error("cause should be reachable through Unwrap")
	}
}
