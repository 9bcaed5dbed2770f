// internal/pipeline/errors.go
package pipeline

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a run failure
type ErrorCode string

const (
	CodeNavigation ErrorCode = "NAVIGATION"
	CodeSession    ErrorCode = "SESSION"
	CodeListing    ErrorCode = "LISTING"
	CodeCheckpoint ErrorCode = "CHECKPOINT"
	CodeExtraction ErrorCode = "EXTRACTION"
)

// Sentinel causes of item-level failures
var (
	ErrNoDetailLink = errors.New("no detail link for listing item")
	ErrListingGone  = errors.New("listing did not load after reload")
)

// RunError describes a failure of the run or of a single item. Only fatal
// errors end the run; item errors are collected in the result.
type RunError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	RunID      string
	Fatal      bool
	Details    map[string]any
}

// Error implements the error interface
func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	if e.RunID != "" {
		msg = "[" + e.RunID + "] " + msg
	}
	return msg
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Underlying
}

// Is matches another RunError by code
func (e *RunError) Is(target error) bool {
	if t, ok := target.(*RunError); ok {
		return e.Code == t.Code
	}
	return false
}

func newRunError(code ErrorCode, message string, err error) *RunError {
	return &RunError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]any),
	}
}

// WithDetail adds a detail to the error
func (e *RunError) WithDetail(key string, value any) *RunError {
	e.Details[key] = value
	return e
}

func (e *RunError) fatal() *RunError {
	e.Fatal = true
	return e
}

// IsFatal reports whether err ended a run
func IsFatal(err error) bool {
	var re *RunError
	return errors.As(err, &re) && re.Fatal
}
