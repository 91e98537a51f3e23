package apperr

import (
	"errors"
	"testing"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"not found", NotFound("bus %d not found", 7), ErrNotFound},
		{"validation", Validation("latitude out of range"), ErrValidation},
		{"conflict", Conflict("bus number %q already exists", "B001"), ErrConflict},
		{"delivery", Delivery("admin-notifications", errors.New("buffer full")), ErrDeliveryFailed},
		{"persistence", Persistence("save bus", errors.New("connection reset")), ErrPersistence},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.kind) {
				t.Fatalf("expected %v to match kind %v", tc.err, tc.kind)
			}
		})
	}
}

func TestPersistenceKeepsExistingKind(t *testing.T) {
	nf := NotFound("route 3 not found")
	err := Persistence("load route", nf)
	if err != nf {
		t.Fatalf("expected the same error back, got %v", err)
	}
	if errors.Is(err, ErrPersistence) {
		t.Fatalf("not found error should not be re-tagged as persistence")
	}
}

func TestPersistenceUnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Persistence("save notification", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
	if got, want := err.Error(), "save notification: disk full"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
	if Persistence("noop", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}
