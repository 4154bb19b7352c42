package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type EnrollmentStatus string

const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Enrollment links a user to a course for a single checkout attempt. The
// order id correlates the attempt across the gateway redirect round-trip.
// Cancelled rows are kept for audit; only non-cancelled rows count towards
// the one-active-enrollment-per-(user, course) rule.
type Enrollment struct {
	ID            int
	UserID        int
	CourseID      int
	OrderID       string
	Amount        decimal.Decimal
	Currency      string
	Status        EnrollmentStatus
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// EnrollmentSummary is an enrollment joined with its course for display.
type EnrollmentSummary struct {
	EnrollmentID  int
	CourseID      int
	CourseTitle   string
	CourseImage   string
	Amount        decimal.Decimal
	Currency      string
	Status        EnrollmentStatus
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
}

type EnrollmentRepository interface {
	// CreatePending inserts a new pending enrollment. It returns
	// ErrAlreadyEnrolled when a non-cancelled row already exists for the
	// (user, course) pair; the uniqueness is enforced by the storage layer,
	// so concurrent inserts for the same pair cannot both succeed.
	CreatePending(ctx context.Context, enrollment *Enrollment) error

	GetActiveByUserAndCourse(ctx context.Context, userId, courseId int) (*Enrollment, error)
	GetByOrderId(ctx context.Context, orderId string) (*Enrollment, error)

	// UpdateStatusFromPending applies a terminal transition to a still-pending
	// enrollment. It returns ErrEditConflict when the row is no longer
	// pending, which callers resolve by re-reading the record.
	UpdateStatusFromPending(ctx context.Context, id int, status EnrollmentStatus, paymentStatus PaymentStatus) (*Enrollment, error)

	GetSummariesByUserId(ctx context.Context, userId int, pagination Pagination) ([]EnrollmentSummary, *Metadata, error)
}
