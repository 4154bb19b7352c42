package mocks

import (
	"context"

	"github.com/bioacademy-lk/platform-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockEnrollmentRepo struct {
	mock.Mock
	domain.EnrollmentRepository
}

func (m *MockEnrollmentRepo) CreatePending(ctx context.Context, enrollment *domain.Enrollment) error {
	args := m.Called(ctx, enrollment)
	return args.Error(0)
}

func (m *MockEnrollmentRepo) GetActiveByUserAndCourse(ctx context.Context, userId, courseId int) (*domain.Enrollment, error) {
	args := m.Called(ctx, userId, courseId)

	enrollment, _ := args.Get(0).(*domain.Enrollment)
	return enrollment, args.Error(1)
}

func (m *MockEnrollmentRepo) GetByOrderId(ctx context.Context, orderId string) (*domain.Enrollment, error) {
	args := m.Called(ctx, orderId)

	enrollment, _ := args.Get(0).(*domain.Enrollment)
	return enrollment, args.Error(1)
}

func (m *MockEnrollmentRepo) UpdateStatusFromPending(
	ctx context.Context,
	id int,
	status domain.EnrollmentStatus,
	paymentStatus domain.PaymentStatus) (*domain.Enrollment, error) {

	args := m.Called(ctx, id, status, paymentStatus)

	enrollment, _ := args.Get(0).(*domain.Enrollment)
	return enrollment, args.Error(1)
}

func (m *MockEnrollmentRepo) GetSummariesByUserId(
	ctx context.Context,
	userId int,
	pagination domain.Pagination) ([]domain.EnrollmentSummary, *domain.Metadata, error) {

	args := m.Called(ctx, userId, pagination)

	summaries, _ := args.Get(0).([]domain.EnrollmentSummary)
	metadata, _ := args.Get(1).(*domain.Metadata)
	return summaries, metadata, args.Error(2)
}
