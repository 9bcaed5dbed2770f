// internal/browser/errors.go
package browser

import (
	"errors"
	"fmt"
	"time"
)

// Common session errors
var (
	ErrElementNotFound  = errors.New("element not found")
	ErrStaleElement     = errors.New("stale element reference")
	ErrClickIntercepted = errors.New("click intercepted by another element")
	ErrNotInteractable  = errors.New("element not interactable")
	ErrWaitTimeout      = errors.New("wait timed out")
	ErrSessionClosed    = errors.New("browser session closed")
	ErrChromeNotFound   = errors.New("chrome browser not found")
)

// WaitError is returned when a bounded wait expires
type WaitError struct {
	After time.Duration
	Last  error
}

func (e *WaitError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("wait timed out after %s: %v", e.After, e.Last)
	}
	return fmt.Sprintf("wait timed out after %s", e.After)
}

// Is lets errors.Is match ErrWaitTimeout
func (e *WaitError) Is(target error) bool {
	return target == ErrWaitTimeout
}

// Timeout marks the error as a timeout for generic classifiers
func (e *WaitError) Timeout() bool { return true }

// IsTransient reports whether err is a UI failure that may succeed when the
// same operation is attempted again.
func IsTransient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrSessionClosed):
		return false
	case errors.Is(err, ErrElementNotFound),
		errors.Is(err, ErrStaleElement),
		errors.Is(err, ErrClickIntercepted),
		errors.Is(err, ErrNotInteractable):
		return true
	}
	return false
}
