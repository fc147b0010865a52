package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestTimeoutError(t *testing.T) {
	err := TimeoutError("results table visible", 5*time.Second)

	if !IsTimeout(err) {
		t.Error("IsTimeout should be true")
	}
	if IsNotFound(err) {
		t.Error("IsNotFound should be false")
	}
	if CodeOf(err) != ErrCodeTimeout {
		t.Errorf("CodeOf = %q, want %q", CodeOf(err), ErrCodeTimeout)
	}
	// The condition description must survive into the message.
	if want := "results table visible"; !strings.Contains(err.Error(), want) {
		t.Errorf("Error() = %q, missing %q", err.Error(), want)
	}
}

func TestNotFoundError_Wrapping(t *testing.T) {
	err := NotFoundError(`text "Save Location"`, 4)

	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) should be true")
	}

	wrapped := fmt.Errorf("saving location: %w", err)
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should see through wrapping")
	}
	if CodeOf(wrapped) != ErrCodeNotFound {
		t.Errorf("CodeOf = %q, want %q", CodeOf(wrapped), ErrCodeNotFound)
	}
}

func TestOptionNotFoundError(t *testing.T) {
	err := OptionNotFoundError("coverage limit", "500000", 3)

	if !errors.Is(err, ErrOptionNotFound) {
		t.Error("should match ErrOptionNotFound sentinel")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("should not match ErrTimeout sentinel")
	}
	if err.Details["attempts"] != 3 {
		t.Errorf("attempts = %v, want 3", err.Details["attempts"])
	}
}

func TestAssertionError(t *testing.T) {
	err := AssertionError("results table", "Texas State University", "No results found")

	if CodeOf(err) != ErrCodeAssertionMismatch {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}
	if !errors.Is(err, ErrAssertionMismatch) {
		t.Error("should match ErrAssertionMismatch sentinel")
	}
}

func TestCaptureError_PreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := CaptureError("screenshot", cause)

	if !errors.Is(err, cause) {
		t.Error("cause should be unwrappable")
	}
	if CodeOf(err) != ErrCodeCaptureFailed {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}
}

func TestCodeOf_PlainError(t *testing.T) {
	if got := CodeOf(errors.New("raw")); got != ErrCodeSession {
		t.Errorf("CodeOf = %q, want %q", got, ErrCodeSession)
	}
}
