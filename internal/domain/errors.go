package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrRecordNotFound     = errors.New("record not found")
	ErrEditConflict       = errors.New("edit conflict")
	ErrCatalogUnavailable = errors.New("course catalog unavailable")
	ErrAlreadyEnrolled    = errors.New("user is already enrolled in this course")
	ErrOrderNotFound      = errors.New("no enrollment recorded for this order")
	ErrHashMismatch       = errors.New("payment notification signature mismatch")
	ErrNotAuthenticated   = errors.New("user is not authenticated")
)

// AlreadyEnrolledError carries the existing active enrollment so callers can
// surface it without a second lookup. It matches ErrAlreadyEnrolled under
// errors.Is.
type AlreadyEnrolledError struct {
	Enrollment *Enrollment
}

func (e *AlreadyEnrolledError) Error() string {
	return fmt.Sprintf("user %d is already enrolled in course %d", e.Enrollment.UserID, e.Enrollment.CourseID)
}

func (e *AlreadyEnrolledError) Is(target error) bool {
	return target == ErrAlreadyEnrolled
}
