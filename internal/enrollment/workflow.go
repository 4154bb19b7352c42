package enrollment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bioacademy-lk/platform-api/internal/domain"
	"github.com/bioacademy-lk/platform-api/internal/mailer"
	"github.com/bioacademy-lk/platform-api/internal/payment"
)

// Workflow drives a course enrollment through checkout. Begin and
// Confirm/Cancel run in different processes of the same deployment at
// different times (the gateway redirect leaves the process), so the two
// halves share no in-memory state: the persisted enrollment row, keyed by
// order id, is the only link between them.
type Workflow struct {
	courses     domain.CourseRepository
	enrollments domain.EnrollmentRepository
	users       domain.UserRepository
	gateway     domain.PaymentGateway
	mailer      mailer.Mailer
	logger      *slog.Logger
}

// Checkout is the result of a successful Begin: the pending enrollment row
// and the signed request the caller hands off to the gateway.
type Checkout struct {
	Enrollment *domain.Enrollment
	Request    *domain.PaymentRequest
}

func NewWorkflow(
	courses domain.CourseRepository,
	enrollments domain.EnrollmentRepository,
	users domain.UserRepository,
	gateway domain.PaymentGateway,
	mailer mailer.Mailer,
	logger *slog.Logger) *Workflow {

	return &Workflow{
		courses:     courses,
		enrollments: enrollments,
		users:       users,
		gateway:     gateway,
		mailer:      mailer,
		logger:      logger,
	}
}

// Begin checks eligibility and, when the user may enroll, records a pending
// enrollment and returns the signed gateway request. The pending row is
// written before the hand-off so an abandoned checkout stays auditable.
// Nothing is written when the eligibility check fails.
func (w *Workflow) Begin(ctx context.Context, user *domain.User, courseID int) (*Checkout, error) {
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}

	course, err := w.courses.GetById(ctx, courseID)
	if err != nil {
		return nil, err
	}

	existing, err := w.enrollments.GetActiveByUserAndCourse(ctx, user.ID, course.ID)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		return nil, &domain.AlreadyEnrolledError{Enrollment: existing}
	}

	req, err := w.gateway.CreateCheckoutRequest(user, course)
	if err != nil {
		return nil, err
	}

	enrollment := &domain.Enrollment{
		UserID:        user.ID,
		CourseID:      course.ID,
		OrderID:       req.OrderID,
		Amount:        course.Price,
		Currency:      course.Currency,
		Status:        domain.EnrollmentStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
	}

	err = w.enrollments.CreatePending(ctx, enrollment)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyEnrolled) {
			// Lost a race with a concurrent Begin for the same pair; the
			// storage constraint kept a single active row.
			return nil, w.alreadyEnrolled(ctx, user.ID, course.ID)
		}

		return nil, err
	}

	return &Checkout{Enrollment: enrollment, Request: req}, nil
}

func (w *Workflow) alreadyEnrolled(ctx context.Context, userID, courseID int) error {
	existing, err := w.enrollments.GetActiveByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return domain.ErrAlreadyEnrolled
	}

	return &domain.AlreadyEnrolledError{Enrollment: existing}
}

// Confirm applies the completed transition for an order. It is idempotent:
// confirming an already-completed order returns the record unchanged, since
// the gateway retries notifications. A confirmation email is dispatched on
// the first transition only; mail failures never roll back the enrollment.
func (w *Workflow) Confirm(ctx context.Context, orderID string) (*domain.Enrollment, error) {
	enrollment, err := w.lookupOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch enrollment.PaymentStatus {
	case domain.PaymentStatusCompleted:
		return enrollment, nil
	case domain.PaymentStatusCancelled:
		return nil, fmt.Errorf("order %s was cancelled: %w", orderID, domain.ErrEditConflict)
	}

	updated, err := w.enrollments.UpdateStatusFromPending(
		ctx,
		enrollment.ID,
		domain.EnrollmentStatusCompleted,
		domain.PaymentStatusCompleted,
	)
	if err != nil {
		if errors.Is(err, domain.ErrEditConflict) {
			// A concurrent callback won the transition; re-read and apply
			// the idempotency rules against the settled state.
			return w.Confirm(ctx, orderID)
		}

		return nil, err
	}

	w.dispatchConfirmationMail(ctx, updated)

	return updated, nil
}

// Cancel applies the cancelled transition for an order. Idempotent on an
// already-cancelled order; the (user, course) pair becomes eligible for
// Begin again afterwards.
func (w *Workflow) Cancel(ctx context.Context, orderID string) (*domain.Enrollment, error) {
	enrollment, err := w.lookupOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch enrollment.PaymentStatus {
	case domain.PaymentStatusCancelled:
		return enrollment, nil
	case domain.PaymentStatusCompleted:
		return nil, fmt.Errorf("order %s was already completed: %w", orderID, domain.ErrEditConflict)
	}

	updated, err := w.enrollments.UpdateStatusFromPending(
		ctx,
		enrollment.ID,
		domain.EnrollmentStatusCancelled,
		domain.PaymentStatusCancelled,
	)
	if err != nil {
		if errors.Is(err, domain.ErrEditConflict) {
			return w.Cancel(ctx, orderID)
		}

		return nil, err
	}

	return updated, nil
}

// Notify verifies a gateway notification and applies the transition its
// status code calls for. No state changes on a signature mismatch.
func (w *Workflow) Notify(ctx context.Context, n domain.PaymentNotification) (*domain.Enrollment, error) {
	err := w.gateway.VerifyNotification(n)
	if err != nil {
		return nil, err
	}

	switch n.StatusCode {
	case domain.GatewayStatusSuccess:
		return w.Confirm(ctx, n.OrderID)
	case domain.GatewayStatusCancelled, domain.GatewayStatusFailed, domain.GatewayStatusChargeback:
		return w.Cancel(ctx, n.OrderID)
	case domain.GatewayStatusPending:
		return w.lookupOrder(ctx, n.OrderID)
	default:
		return nil, fmt.Errorf("unrecognized gateway status code %d for order %s", n.StatusCode, n.OrderID)
	}
}

// Lookup returns the enrollment recorded for an order id.
func (w *Workflow) Lookup(ctx context.Context, orderID string) (*domain.Enrollment, error) {
	return w.lookupOrder(ctx, orderID)
}

func (w *Workflow) lookupOrder(ctx context.Context, orderID string) (*domain.Enrollment, error) {
	userID, courseID, err := payment.ParseOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, err)
	}

	enrollment, err := w.enrollments.GetByOrderId(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}

		return nil, err
	}

	if enrollment.UserID != userID || enrollment.CourseID != courseID {
		return nil, domain.ErrOrderNotFound
	}

	return enrollment, nil
}

func (w *Workflow) dispatchConfirmationMail(ctx context.Context, enrollment *domain.Enrollment) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error("panic occurred during sending enrollment confirmation mail", "panic", r)
			}
		}()

		// Detached from the request context: the mail outlives the callback.
		ctx := context.WithoutCancel(ctx)

		user, err := w.users.GetById(ctx, enrollment.UserID)
		if err != nil {
			w.logger.Error("failed to load user for confirmation mail", "user_id", enrollment.UserID, "error", err)
			return
		}

		course, err := w.courses.GetById(ctx, enrollment.CourseID)
		if err != nil {
			w.logger.Error("failed to load course for confirmation mail", "course_id", enrollment.CourseID, "error", err)
			return
		}

		data := map[string]any{
			"firstName":   user.FirstName,
			"courseTitle": course.Title,
			"orderId":     enrollment.OrderID,
			"amount":      payment.FormatAmount(enrollment.Amount),
			"currency":    enrollment.Currency,
		}

		err = w.mailer.Send(user.Email, "enrollment_confirmation.tmpl", data)
		if err != nil {
			w.logger.Error("failed to send enrollment confirmation email", "order_id", enrollment.OrderID, "error", err)
		} else {
			w.logger.Info("enrollment confirmation email sent", "order_id", enrollment.OrderID)
		}
	}()
}
