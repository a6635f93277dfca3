package application

import (
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"b": "invalid", "a": "invalid"}}
	if got := withFields.Error(); got != "validation failed: a, b" {
		t.Fatalf("expected sorted field list, got %q", got)
	}
}

func TestValidationError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	if base.HasErrors() {
		t.Fatalf("expected HasErrors to report false for empty error")
	}
	base.add("first", "value")
	base.merge("departments[0].", map[string]string{"department_id": "is required"})

	if got := base.FieldErrors["departments[0].department_id"]; got != "is required" {
		t.Fatalf("expected prefixed merge, got %v", base.FieldErrors)
	}
	base.merge("", nil)
	if len(base.FieldErrors) != 2 || !base.HasErrors() {
		t.Fatalf("unexpected fields %v", base.FieldErrors)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[error]string{
		nil:                                   "",
		ErrUnauthorized:                       "unauthorized",
		fmt.Errorf("wrap: %w", ErrNotFound):   "not_found",
		ErrAlreadyExists:                      "already_exists",
		ErrInvalidCredentials:                 "invalid_credentials",
		ErrSessionExpired:                     "session_expired",
		ErrSessionRevoked:                     "session_revoked",
		ErrBackendUnavailable:                 "backend_unavailable",
		&ValidationError{}:                    "validation",
		fmt.Errorf("something else happened"): "unexpected",
	}
	for err, want := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}
