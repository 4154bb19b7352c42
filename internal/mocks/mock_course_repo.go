package mocks

import (
	"context"

	"github.com/bioacademy-lk/platform-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCourseRepo struct {
	mock.Mock
	domain.CourseRepository
}

func (m *MockCourseRepo) GetAll(ctx context.Context, filters domain.CourseFilters) ([]*domain.Course, *domain.Metadata, error) {
	args := m.Called(ctx, filters)

	courses, _ := args.Get(0).([]*domain.Course)
	metadata, _ := args.Get(1).(*domain.Metadata)
	return courses, metadata, args.Error(2)
}

func (m *MockCourseRepo) GetById(ctx context.Context, id int) (*domain.Course, error) {
	args := m.Called(ctx, id)

	course, _ := args.Get(0).(*domain.Course)
	return course, args.Error(1)
}
