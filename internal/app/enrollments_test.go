package app

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/bioacademy-lk/platform-api/api"
	"github.com/bioacademy-lk/platform-api/internal/domain"
	"github.com/bioacademy-lk/platform-api/internal/mocks"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func withUrlParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func testCourse() *domain.Course {
	return &domain.Course{
		ID:        7,
		Title:     "Introduction to Genomic Data Analysis",
		Summary:   "Analyze NGS data from raw reads to variants",
		Price:     decimal.NewFromInt(15000),
		Currency:  "LKR",
		Duration:  "6 weeks",
		Published: true,
	}
}

func testUser() *domain.User {
	return &domain.User{
		ID:        42,
		FirstName: "Nadeesha",
		LastName:  "Perera",
		Email:     "nadeesha@example.com",
		Activated: true,
	}
}

func TestCreateCheckoutHandler(t *testing.T) {
	course := testCourse()
	user := testUser()

	paymentRequest := &domain.PaymentRequest{
		MerchantID: "M12345",
		OrderID:    "42_7_1700000000000",
		Items:      course.Title,
		Amount:     "15000.00",
		Currency:   "LKR",
		Hash:       "ABCDEF",
	}

	tests := []struct {
		name           string
		courseIdParam  string
		setupMocks     func(*mocks.MockUserRepo, *mocks.MockCourseRepo, *mocks.MockEnrollmentRepo, *mocks.MockPaymentGateway)
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:          "returns checkout form when user is eligible",
			courseIdParam: "7",
			setupMocks: func(userRepo *mocks.MockUserRepo, courseRepo *mocks.MockCourseRepo, enrollmentRepo *mocks.MockEnrollmentRepo, gateway *mocks.MockPaymentGateway) {
				userRepo.On("GetById", mock.Anything, user.ID).Return(user, nil)
				courseRepo.On("GetById", mock.Anything, course.ID).Return(course, nil)
				enrollmentRepo.On("GetActiveByUserAndCourse", mock.Anything, user.ID, course.ID).
					Return(nil, domain.ErrRecordNotFound)
				gateway.On("CreateCheckoutRequest", user, course).Return(paymentRequest, nil)
				enrollmentRepo.On("CreatePending", mock.Anything, mock.AnythingOfType("*domain.Enrollment")).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:          "rejects checkout when user is already enrolled",
			courseIdParam: "7",
			setupMocks: func(userRepo *mocks.MockUserRepo, courseRepo *mocks.MockCourseRepo, enrollmentRepo *mocks.MockEnrollmentRepo, gateway *mocks.MockPaymentGateway) {
				userRepo.On("GetById", mock.Anything, user.ID).Return(user, nil)
				courseRepo.On("GetById", mock.Anything, course.ID).Return(course, nil)
				enrollmentRepo.On("GetActiveByUserAndCourse", mock.Anything, user.ID, course.ID).
					Return(&domain.Enrollment{ID: 1, UserID: user.ID, CourseID: course.ID}, nil)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:          "returns 404 for unknown course",
			courseIdParam: "999",
			setupMocks: func(userRepo *mocks.MockUserRepo, courseRepo *mocks.MockCourseRepo, enrollmentRepo *mocks.MockEnrollmentRepo, gateway *mocks.MockPaymentGateway) {
				userRepo.On("GetById", mock.Anything, user.ID).Return(user, nil)
				courseRepo.On("GetById", mock.Anything, 999).Return(nil, domain.ErrRecordNotFound)
			},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: "The requested resource not found",
		},
		{
			name:          "returns 503 when the catalog is unavailable",
			courseIdParam: "7",
			setupMocks: func(userRepo *mocks.MockUserRepo, courseRepo *mocks.MockCourseRepo, enrollmentRepo *mocks.MockEnrollmentRepo, gateway *mocks.MockPaymentGateway) {
				userRepo.On("GetById", mock.Anything, user.ID).Return(user, nil)
				courseRepo.On("GetById", mock.Anything, course.ID).Return(nil, domain.ErrCatalogUnavailable)
			},
			wantStatus:     http.StatusServiceUnavailable,
			wantErrMessage: "The service is temporarily unavailable, please try again later",
		},
		{
			name:           "rejects invalid course id",
			courseIdParam:  "not-a-number",
			setupMocks:     func(*mocks.MockUserRepo, *mocks.MockCourseRepo, *mocks.MockEnrollmentRepo, *mocks.MockPaymentGateway) {},
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "invalid courseId parameter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := &mocks.MockUserRepo{}
			courseRepo := &mocks.MockCourseRepo{}
			enrollmentRepo := &mocks.MockEnrollmentRepo{}
			gateway := &mocks.MockPaymentGateway{}

			tt.setupMocks(userRepo, courseRepo, enrollmentRepo, gateway)

			app := newTestApplication(func(app *Application) {
				app.userRepo = userRepo
				app.courseRepo = courseRepo
				app.enrollmentRepo = enrollmentRepo
				app.gateway = gateway
			})

			w, r := executeRequest(t, http.MethodPost, "/courses/"+tt.courseIdParam+"/checkout", nil)
			r = withUrlParam(r, "courseId", tt.courseIdParam)
			r = r.WithContext(context.WithValue(r.Context(), SessionKeyUserId, user.ID))

			app.CreateCheckoutHandler(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}

			checkErrorResponse(t, w, struct {
				wantStatus     int
				wantErrMessage string
			}{tt.wantStatus, tt.wantErrMessage})

			if tt.wantStatus == http.StatusCreated {
				var resp api.CheckoutResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("Failed to decode checkout response: %v", err)
				}

				if resp.CheckoutUrl != app.config.Gateway.CheckoutURL {
					t.Errorf("CheckoutUrl = %v, want %v", resp.CheckoutUrl, app.config.Gateway.CheckoutURL)
				}

				if resp.Payment.OrderId != paymentRequest.OrderID {
					t.Errorf("OrderId = %v, want %v", resp.Payment.OrderId, paymentRequest.OrderID)
				}

				if resp.Payment.Hash == "" {
					t.Error("Expected a signed payment form, got empty hash")
				}
			}

			userRepo.AssertExpectations(t)
			courseRepo.AssertExpectations(t)
			enrollmentRepo.AssertExpectations(t)
			gateway.AssertExpectations(t)
		})
	}
}

func TestGetEnrollmentsOfUserHandler(t *testing.T) {
	user := testUser()
	now := time.Now()

	summaries := []domain.EnrollmentSummary{
		{
			EnrollmentID:  1,
			CourseID:      7,
			CourseTitle:   "Introduction to Genomic Data Analysis",
			Amount:        decimal.NewFromInt(15000),
			Currency:      "LKR",
			Status:        domain.EnrollmentStatusCompleted,
			PaymentStatus: domain.PaymentStatusCompleted,
			CreatedAt:     now,
		},
	}

	enrollmentRepo := &mocks.MockEnrollmentRepo{}
	enrollmentRepo.On("GetSummariesByUserId", mock.Anything, user.ID, domain.Pagination{Page: 1, PageSize: 20}).
		Return(summaries, domain.NewMetadata(1, 1, 20), nil)

	app := newTestApplication(func(app *Application) {
		app.enrollmentRepo = enrollmentRepo
	})

	w, r := executeRequest(t, http.MethodGet, "/users/me/enrollments", nil)
	r = r.WithContext(context.WithValue(r.Context(), SessionKeyUserId, user.ID))

	app.GetEnrollmentsOfUserHandler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("Status code = %d, want %d", w.Code, http.StatusOK)
	}

	var resp api.UserEnrollmentsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode enrollments response: %v", err)
	}

	if len(resp.Enrollments) != 1 {
		t.Fatalf("Enrollments length = %d, want 1", len(resp.Enrollments))
	}

	if resp.Enrollments[0].Amount != "15000.00" {
		t.Errorf("Amount = %v, want 15000.00", resp.Enrollments[0].Amount)
	}

	if resp.Metadata.TotalRecords != 1 {
		t.Errorf("TotalRecords = %d, want 1", resp.Metadata.TotalRecords)
	}

	enrollmentRepo.AssertExpectations(t)
}
