package util

import (
	"errors"
	"strings"
)

var (
	ErrNotFound             = errors.New("resource not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded for this schedule")
	ErrScheduleNotAvailable = errors.New("schedule is not available for attempts")
	ErrAttemptNotOpen       = errors.New("attempt is not open for answers")
	ErrInvalidAnswer        = errors.New("answer payload is invalid for the question type")
	ErrExamNotEditable      = errors.New("exam can no longer be edited")
	ErrInvalidTransition    = errors.New("invalid status transition")
)

// ValidationErrors collects every violated authoring rule so the author
// sees all problems at once instead of fixing them one by one.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

func (v ValidationErrors) Any() bool {
	return len(v) > 0
}

// AsValidation unwraps a ValidationErrors list from err, if present.
func AsValidation(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
