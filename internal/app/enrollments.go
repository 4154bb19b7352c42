package app

import (
	"errors"
	"net/http"

	"github.com/bioacademy-lk/platform-api/api"
	"github.com/bioacademy-lk/platform-api/internal/domain"
	"github.com/bioacademy-lk/platform-api/internal/payment"
)

// CreateCheckoutHandler starts an enrollment: it records a pending enrollment
// for the authenticated user and returns the signed form the frontend posts
// to the payment gateway.
func (app *Application) CreateCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	courseId, err := app.readIntParam(r, "courseId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)
	user, err := app.userRepo.GetById(r.Context(), userId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	checkout, err := app.workflow.Begin(r.Context(), user, courseId)
	if err != nil {
		var alreadyEnrolled *domain.AlreadyEnrolledError

		switch {
		case errors.As(err, &alreadyEnrolled):
			logger.Warn("checkout attempt for already enrolled course", "course_id", courseId)
			app.editConflictResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrAlreadyEnrolled):
			app.editConflictResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrCatalogUnavailable):
			app.serviceUnavailableResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.metrics.addCheckoutStarted(r.Context())
	logger.Info("checkout started", "order_id", checkout.Enrollment.OrderID, "course_id", courseId)

	resp := api.CheckoutResponse{
		CheckoutUrl: app.config.Gateway.CheckoutURL,
		Payment:     toApiPaymentForm(checkout.Request),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetEnrollmentsOfUserHandler(w http.ResponseWriter, r *http.Request) {
	pagination := domain.Pagination{
		Page:     app.readIntQuery(r, "page", 1),
		PageSize: app.readIntQuery(r, "pageSize", 20),
	}

	if pagination.Page < 1 || pagination.PageSize < 1 || pagination.PageSize > 100 {
		app.badRequestResponse(w, r, errors.New("invalid pagination parameters"))
		return
	}

	userId := app.contextGetUserId(r)

	summaries, metadata, err := app.enrollmentRepo.GetSummariesByUserId(r.Context(), userId, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserEnrollmentsResponse{
		Enrollments: make([]api.EnrollmentSummary, 0, len(summaries)),
		Metadata:    toApiMetadata(metadata),
	}

	for _, summary := range summaries {
		resp.Enrollments = append(resp.Enrollments, api.EnrollmentSummary{
			EnrollmentId:  summary.EnrollmentID,
			CourseId:      summary.CourseID,
			CourseTitle:   summary.CourseTitle,
			CourseImage:   summary.CourseImage,
			Amount:        payment.FormatAmount(summary.Amount),
			Currency:      summary.Currency,
			Status:        string(summary.Status),
			PaymentStatus: string(summary.PaymentStatus),
			CreatedAt:     summary.CreatedAt,
		})
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiPaymentForm(req *domain.PaymentRequest) api.PaymentForm {
	return api.PaymentForm{
		MerchantId: req.MerchantID,
		OrderId:    req.OrderID,
		Items:      req.Items,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Hash:       req.Hash,
		ReturnUrl:  req.ReturnURL,
		CancelUrl:  req.CancelURL,
		NotifyUrl:  req.NotifyURL,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
	}
}
