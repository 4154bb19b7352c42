package repository

import (
	"context"
	"errors"

	"github.com/bioacademy-lk/platform-api/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresEnrollmentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresEnrollmentRepository(db *pgxpool.Pool) *PostgresEnrollmentRepository {
	return &PostgresEnrollmentRepository{
		db: db,
	}
}

// CreatePending relies on the partial unique index on (user_id, course_id)
// over non-cancelled rows, so two concurrent inserts for the same pair
// cannot both succeed regardless of client sequencing.
func (p *PostgresEnrollmentRepository) CreatePending(ctx context.Context, enrollment *domain.Enrollment) error {
	query := `
		INSERT INTO enrollments (
			user_id,
			course_id,
			order_id,
			amount,
			currency,
			status,
			payment_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		enrollment.UserID,
		enrollment.CourseID,
		enrollment.OrderID,
		enrollment.Amount,
		enrollment.Currency,
		enrollment.Status,
		enrollment.PaymentStatus,
	).Scan(&enrollment.ID, &enrollment.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrAlreadyEnrolled
		}

		return err
	}

	return nil
}

func (p *PostgresEnrollmentRepository) GetActiveByUserAndCourse(ctx context.Context, userId, courseId int) (*domain.Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, order_id, amount, currency, status, payment_status, created_at, updated_at
		FROM enrollments
		WHERE user_id = $1 AND course_id = $2 AND payment_status <> 'cancelled'
	`

	return p.scanOne(p.db.QueryRow(ctx, query, userId, courseId))
}

func (p *PostgresEnrollmentRepository) GetByOrderId(ctx context.Context, orderId string) (*domain.Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, order_id, amount, currency, status, payment_status, created_at, updated_at
		FROM enrollments
		WHERE order_id = $1
	`

	return p.scanOne(p.db.QueryRow(ctx, query, orderId))
}

func (p *PostgresEnrollmentRepository) scanOne(row pgx.Row) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment

	err := row.Scan(
		&enrollment.ID,
		&enrollment.UserID,
		&enrollment.CourseID,
		&enrollment.OrderID,
		&enrollment.Amount,
		&enrollment.Currency,
		&enrollment.Status,
		&enrollment.PaymentStatus,
		&enrollment.CreatedAt,
		&enrollment.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &enrollment, nil
}

// UpdateStatusFromPending is the single-statement compare-and-set behind the
// idempotent callback handlers: only a still-pending row is transitioned, and
// a row that already settled reports ErrEditConflict for the caller to
// re-read.
func (p *PostgresEnrollmentRepository) UpdateStatusFromPending(
	ctx context.Context,
	id int,
	status domain.EnrollmentStatus,
	paymentStatus domain.PaymentStatus) (*domain.Enrollment, error) {

	query := `
		UPDATE enrollments
		SET status = $1, payment_status = $2, updated_at = NOW()
		WHERE id = $3 AND payment_status = 'pending'
		RETURNING id, user_id, course_id, order_id, amount, currency, status, payment_status, created_at, updated_at
	`

	enrollment, err := p.scanOne(p.db.QueryRow(ctx, query, status, paymentStatus, id))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrEditConflict
		}

		return nil, err
	}

	return enrollment, nil
}

func (p *PostgresEnrollmentRepository) GetSummariesByUserId(
	ctx context.Context,
	userId int,
	pagination domain.Pagination) ([]domain.EnrollmentSummary, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			e.id,
			c.id,
			c.title,
			c.image_url,
			e.amount,
			e.currency,
			e.status,
			e.payment_status,
			e.created_at
		FROM enrollments e
		JOIN courses c ON e.course_id = c.id
		WHERE e.user_id = $1
		ORDER BY e.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userId, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	enrollments := make([]domain.EnrollmentSummary, 0)
	totalRecords := 0

	for rows.Next() {
		var enrollment domain.EnrollmentSummary

		err := rows.Scan(
			&totalRecords,
			&enrollment.EnrollmentID,
			&enrollment.CourseID,
			&enrollment.CourseTitle,
			&enrollment.CourseImage,
			&enrollment.Amount,
			&enrollment.Currency,
			&enrollment.Status,
			&enrollment.PaymentStatus,
			&enrollment.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		enrollments = append(enrollments, enrollment)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return enrollments, metadata, nil
}
