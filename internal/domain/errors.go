package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error codes for categorization
const (
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeOptionNotFound    = "OPTION_NOT_FOUND"
	ErrCodeAssertionMismatch = "ASSERTION_MISMATCH"
	ErrCodeCaptureFailed     = "CAPTURE_FAILED"
	ErrCodeSession           = "SESSION_ERROR"
	ErrCodeValidation        = "VALIDATION_ERROR"
)

// DriveError is the structured error for all browser-driving operations.
// Interaction primitives surface these; the scenario runner is the single
// place that decides whether one is fatal.
type DriveError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface
func (e *DriveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DriveError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for error comparison
func (e *DriveError) Is(target error) bool {
	t, ok := target.(*DriveError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors (used with errors.Is)
var (
	ErrNotFound          = &DriveError{Code: ErrCodeNotFound, Message: "element not found"}
	ErrTimeout           = &DriveError{Code: ErrCodeTimeout, Message: "wait condition timed out"}
	ErrOptionNotFound    = &DriveError{Code: ErrCodeOptionNotFound, Message: "dropdown option not found"}
	ErrAssertionMismatch = &DriveError{Code: ErrCodeAssertionMismatch, Message: "assertion mismatch"}
	ErrCaptureFailed     = &DriveError{Code: ErrCodeCaptureFailed, Message: "diagnostics capture failed"}
)

// NotFoundError reports a selector strategy chain that exhausted without a
// visible unique match.
func NotFoundError(target string, strategies int) *DriveError {
	return &DriveError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("no visible match for %s after %d strategies", target, strategies),
		Details: map[string]any{"target": target, "strategies": strategies},
		Err:     ErrNotFound,
	}
}

// TimeoutError reports a wait condition that did not hold within its budget.
// The condition description always rides along for diagnosis.
func TimeoutError(condition string, budget time.Duration) *DriveError {
	return &DriveError{
		Code:    ErrCodeTimeout,
		Message: fmt.Sprintf("condition %q not met within %s", condition, budget),
		Details: map[string]any{"condition": condition, "budget": budget.String()},
		Err:     ErrTimeout,
	}
}

// OptionNotFoundError reports a dropdown selection that could not locate the
// desired option text within its retry budget.
func OptionNotFoundError(dropdown, option string, attempts int) *DriveError {
	return &DriveError{
		Code:    ErrCodeOptionNotFound,
		Message: fmt.Sprintf("option %q not found in %s after %d attempts", option, dropdown, attempts),
		Details: map[string]any{"dropdown": dropdown, "option": option, "attempts": attempts},
		Err:     ErrOptionNotFound,
	}
}

// AssertionError reports an explicit verification that did not hold.
func AssertionError(subject, want, got string) *DriveError {
	return &DriveError{
		Code:    ErrCodeAssertionMismatch,
		Message: fmt.Sprintf("%s: want %q, got %q", subject, want, got),
		Details: map[string]any{"subject": subject, "want": want, "got": got},
		Err:     ErrAssertionMismatch,
	}
}

// CaptureError reports a diagnostics capture failure. These are always caught
// locally, logged, and suppressed so they never mask the original failure.
func CaptureError(stage string, err error) *DriveError {
	return &DriveError{
		Code:    ErrCodeCaptureFailed,
		Message: fmt.Sprintf("capture failed during %s", stage),
		Details: map[string]any{"stage": stage},
		Err:     err,
	}
}

// SessionError wraps a raw browser-engine failure.
func SessionError(operation string, err error) *DriveError {
	return &DriveError{
		Code:    ErrCodeSession,
		Message: fmt.Sprintf("browser session: %s", operation),
		Details: map[string]any{"operation": operation},
		Err:     err,
	}
}

// ValidationError creates a configuration validation error
func ValidationError(field, message string) *DriveError {
	return &DriveError{
		Code:    ErrCodeValidation,
		Message: message,
		Details: map[string]any{"field": field},
	}
}

// IsTimeout checks if err is a timeout
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsNotFound checks if err is an exhausted strategy chain
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// CodeOf returns the error code for an error
func CodeOf(err error) string {
	var de *DriveError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeSession
}
