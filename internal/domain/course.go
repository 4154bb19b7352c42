package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Course struct {
	ID          int
	Title       string
	Summary     string
	Description string
	Price       decimal.Decimal
	Currency    string
	Duration    string
	ImageUrl    string
	Published   bool
	CreatedAt   time.Time
}

type CourseFilters struct {
	Page     int
	PageSize int
	Term     string
	Sort     string
}

func (f CourseFilters) SortColumn() string {
	return strings.TrimPrefix(f.Sort, "-")
}

func (f CourseFilters) SortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return "DESC"
	}

	return "ASC"
}

func (f CourseFilters) Limit() int {
	return f.PageSize
}

func (f CourseFilters) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type CourseRepository interface {
	GetAll(ctx context.Context, filters CourseFilters) ([]*Course, *Metadata, error)
	GetById(ctx context.Context, id int) (*Course, error)
}
