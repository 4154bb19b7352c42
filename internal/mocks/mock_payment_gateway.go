package mocks

import (
	"github.com/bioacademy-lk/platform-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentGateway struct {
	mock.Mock
	domain.PaymentGateway
}

func (m *MockPaymentGateway) CreateCheckoutRequest(user *domain.User, course *domain.Course) (*domain.PaymentRequest, error) {
	args := m.Called(user, course)

	req, _ := args.Get(0).(*domain.PaymentRequest)
	return req, args.Error(1)
}

func (m *MockPaymentGateway) VerifyNotification(n domain.PaymentNotification) error {
	args := m.Called(n)
	return args.Error(0)
}
