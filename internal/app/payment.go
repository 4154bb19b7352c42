package app

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bioacademy-lk/platform-api/api"
	"github.com/bioacademy-lk/platform-api/internal/domain"
)

// PaymentNotifyHandler handles the gateway's server-to-server callback. The
// gateway retries until it receives a 2xx, so every reply other than a
// genuine server failure is 200. The signature is verified before any state
// changes; a mismatch is reported as 401 and the enrollment stays untouched.
func (app *Application) PaymentNotifyHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	err := r.ParseForm()
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	statusCode, err := strconv.Atoi(r.PostForm.Get("status_code"))
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid status_code field"))
		return
	}

	notification := domain.PaymentNotification{
		MerchantID: r.PostForm.Get("merchant_id"),
		OrderID:    r.PostForm.Get("order_id"),
		Amount:     r.PostForm.Get("amount"),
		Currency:   r.PostForm.Get("currency"),
		StatusCode: statusCode,
		Signature:  r.PostForm.Get("signature"),
	}

	enrollment, err := app.workflow.Notify(r.Context(), notification)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHashMismatch):
			app.metrics.addRejectedNotification(r.Context())
			logger.Warn("rejected payment notification with invalid signature", "order_id", notification.OrderID)
			app.errorResponse(w, r, http.StatusUnauthorized, "Invalid notification signature")
		case errors.Is(err, domain.ErrOrderNotFound):
			logger.Warn("payment notification for unknown order", "order_id", notification.OrderID)
			app.notFoundResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	switch notification.StatusCode {
	case domain.GatewayStatusSuccess:
		app.metrics.addPaymentCompleted(r.Context())
	case domain.GatewayStatusCancelled, domain.GatewayStatusFailed, domain.GatewayStatusChargeback:
		app.metrics.addPaymentCancelled(r.Context())
	}

	logger.Info("payment notification processed",
		"order_id", enrollment.OrderID,
		"status_code", notification.StatusCode,
		"payment_status", enrollment.PaymentStatus,
	)

	w.WriteHeader(http.StatusOK)
}

// PaymentReturnHandler serves the browser redirect after a checkout. The
// notify callback is authoritative; this endpoint only reports the order's
// current state, which may still be pending when the redirect outruns the
// notification.
func (app *Application) PaymentReturnHandler(w http.ResponseWriter, r *http.Request) {
	orderId := r.URL.Query().Get("order_id")
	if orderId == "" {
		app.badRequestResponse(w, r, errors.New("missing order_id parameter"))
		return
	}

	enrollment, err := app.workflow.Lookup(r.Context(), orderId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			app.notFoundResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.writePaymentStatus(w, r, enrollment)
}

// PaymentCancelHandler serves the browser redirect when the user backs out of
// the checkout page. Cancelling is applied here as well since the gateway
// sends no notification for a checkout the user abandoned.
func (app *Application) PaymentCancelHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	orderId := r.URL.Query().Get("order_id")
	if orderId == "" {
		app.badRequestResponse(w, r, errors.New("missing order_id parameter"))
		return
	}

	enrollment, err := app.workflow.Cancel(r.Context(), orderId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			app.notFoundResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	app.metrics.addPaymentCancelled(r.Context())
	logger.Info("checkout cancelled", "order_id", enrollment.OrderID)

	app.writePaymentStatus(w, r, enrollment)
}

func (app *Application) writePaymentStatus(w http.ResponseWriter, r *http.Request, enrollment *domain.Enrollment) {
	resp := api.PaymentStatusResponse{
		OrderId:       enrollment.OrderID,
		Status:        string(enrollment.Status),
		PaymentStatus: string(enrollment.PaymentStatus),
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
