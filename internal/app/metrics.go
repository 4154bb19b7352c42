package app

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	checkoutsStarted      metric.Int64Counter
	paymentsCompleted     metric.Int64Counter
	paymentsCancelled     metric.Int64Counter
	rejectedNotifications metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	meter := otel.Meter("bioacademy-api/enrollment")

	checkoutsStarted, err := meter.Int64Counter(
		"enrollment.checkouts.started",
		metric.WithDescription("Number of enrollment checkouts started"),
	)
	if err != nil {
		return nil, err
	}

	paymentsCompleted, err := meter.Int64Counter(
		"enrollment.payments.completed",
		metric.WithDescription("Number of enrollment payments completed"),
	)
	if err != nil {
		return nil, err
	}

	paymentsCancelled, err := meter.Int64Counter(
		"enrollment.payments.cancelled",
		metric.WithDescription("Number of enrollment payments cancelled"),
	)
	if err != nil {
		return nil, err
	}

	rejectedNotifications, err := meter.Int64Counter(
		"enrollment.notifications.rejected",
		metric.WithDescription("Number of payment notifications rejected due to an invalid signature"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{
		checkoutsStarted:      checkoutsStarted,
		paymentsCompleted:     paymentsCompleted,
		paymentsCancelled:     paymentsCancelled,
		rejectedNotifications: rejectedNotifications,
	}, nil
}

func (m *metrics) addCheckoutStarted(ctx context.Context) {
	if m != nil {
		m.checkoutsStarted.Add(ctx, 1)
	}
}

func (m *metrics) addPaymentCompleted(ctx context.Context) {
	if m != nil {
		m.paymentsCompleted.Add(ctx, 1)
	}
}

func (m *metrics) addPaymentCancelled(ctx context.Context) {
	if m != nil {
		m.paymentsCancelled.Add(ctx, 1)
	}
}

func (m *metrics) addRejectedNotification(ctx context.Context) {
	if m != nil {
		m.rejectedNotifications.Add(ctx, 1)
	}
}
