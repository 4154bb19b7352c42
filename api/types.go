// Package api holds the request and response types of the HTTP API.
package api

import (
	"time"
)

// ErrorResponse is the envelope used for all error replies.
type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"errors"`
	RequestId        string            `json:"request_id,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,alpha,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,alpha,min=2,max=50"`
	Password  string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserActivationRequest struct {
	Token string `json:"token" validate:"required,len=26"`
}

type UserActivationResponse struct {
	Activated bool `json:"activated"`
}

type AlreadyLoggedInResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	Id        int       `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Activated bool      `json:"activated"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"system_info"`
}

type SystemInfo struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	PageSize     int `json:"pageSize"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	TotalRecords int `json:"totalRecords"`
}

type CourseSummary struct {
	Id       int    `json:"id"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Duration string `json:"duration"`
	ImageUrl string `json:"imageUrl"`
}

type CourseListResponse struct {
	Courses  []CourseSummary `json:"courses"`
	Metadata Metadata        `json:"metadata"`
}

type CourseDetailResponse struct {
	Id          int       `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Currency    string    `json:"currency"`
	Duration    string    `json:"duration"`
	ImageUrl    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PaymentForm carries the signed fields the frontend posts to the
// payment gateway's checkout page.
type PaymentForm struct {
	MerchantId string `json:"merchantId"`
	OrderId    string `json:"orderId"`
	Items      string `json:"items"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Hash       string `json:"hash"`
	ReturnUrl  string `json:"returnUrl"`
	CancelUrl  string `json:"cancelUrl"`
	NotifyUrl  string `json:"notifyUrl"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
}

type CheckoutResponse struct {
	CheckoutUrl string      `json:"checkoutUrl"`
	Payment     PaymentForm `json:"payment"`
}

type EnrollmentSummary struct {
	EnrollmentId  int       `json:"enrollmentId"`
	CourseId      int       `json:"courseId"`
	CourseTitle   string    `json:"courseTitle"`
	CourseImage   string    `json:"courseImage"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	CreatedAt     time.Time `json:"createdAt"`
}

type UserEnrollmentsResponse struct {
	Enrollments []EnrollmentSummary `json:"enrollments"`
	Metadata    Metadata            `json:"metadata"`
}

type PaymentStatusResponse struct {
	OrderId       string `json:"orderId"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}
