package services

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced to handlers. Handlers own the HTTP status mapping;
// services only decide which bucket a failure belongs to.
var (
	ErrNotFound            = errors.New("record not found")
	ErrNotEligible         = errors.New("no assignment covers this student for this test")
	ErrRetakeLimitExceeded = errors.New("retake limit exceeded for this test")
	ErrStateConflict       = errors.New("submission state does not permit this operation")
	ErrLateSubmission      = errors.New("time budget exceeded; submission rejected")
)

// ValidationError reports a malformed test, question, or grading request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationErr(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
