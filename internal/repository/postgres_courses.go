package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bioacademy-lk/platform-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresCourseRepository struct {
	db *pgxpool.Pool
}

func NewPostgresCourseRepository(db *pgxpool.Pool) *PostgresCourseRepository {
	return &PostgresCourseRepository{
		db: db,
	}
}

// Transport and storage failures surface as ErrCatalogUnavailable so callers
// can degrade to a retry message instead of failing hard.
func catalogError(err error) error {
	return fmt.Errorf("%w: %s", domain.ErrCatalogUnavailable, err)
}

func (p *PostgresCourseRepository) GetAll(ctx context.Context, filters domain.CourseFilters) ([]*domain.Course, *domain.Metadata, error) {
	sortColumn := filters.SortColumn()
	if sortColumn == "" {
		sortColumn = "id"
	}

	// The tsvector expression must stay in sync with courses_search_idx so the
	// index can serve the search.
	query := fmt.Sprintf(`SELECT count(*) OVER(), id, title, summary, price, currency, duration, image_url
		FROM courses
		WHERE published = true
		AND (to_tsvector('simple', title || ' ' || summary) @@ plainto_tsquery('simple', $1)
			OR $1 = '')
		ORDER BY %s %s
		LIMIT $2 OFFSET $3`, sortColumn, filters.SortDirection())

	rows, err := p.db.Query(ctx, query, filters.Term, filters.Limit(), filters.Offset())
	if err != nil {
		return nil, nil, catalogError(err)
	}
	defer rows.Close()

	totalRecords := 0
	courses := []*domain.Course{}

	for rows.Next() {
		var course domain.Course

		err := rows.Scan(
			&totalRecords,
			&course.ID,
			&course.Title,
			&course.Summary,
			&course.Price,
			&course.Currency,
			&course.Duration,
			&course.ImageUrl,
		)

		if err != nil {
			return nil, nil, catalogError(err)
		}

		courses = append(courses, &course)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, catalogError(err)
	}

	metadata := domain.NewMetadata(totalRecords, filters.Page, filters.PageSize)

	return courses, metadata, nil
}

func (p *PostgresCourseRepository) GetById(ctx context.Context, id int) (*domain.Course, error) {
	query := `
		SELECT id, title, summary, description, price, currency, duration, image_url, published, created_at
		FROM courses
		WHERE id = $1 AND published = true
	`

	var course domain.Course

	err := p.db.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Title,
		&course.Summary,
		&course.Description,
		&course.Price,
		&course.Currency,
		&course.Duration,
		&course.ImageUrl,
		&course.Published,
		&course.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, catalogError(err)
	}

	return &course, nil
}
