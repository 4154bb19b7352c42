package integration_test

import (
	"github.com/bioacademy-lk/platform-api/internal/app"
	"github.com/bioacademy-lk/platform-api/internal/mailer"
	"github.com/bioacademy-lk/platform-api/internal/payment"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TestApp struct {
	App     *app.Application
	DB      *pgxpool.Pool
	Mailer  *mailer.MockMailer
	Gateway *payment.PayHereGateway
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	mockMailer := mailer.NewMockMailer()

	application, err := app.New(cfg, app.WithMailer(mockMailer))
	if err != nil {
		return nil, err
	}

	// Separate pool for test fixtures and assertions.
	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	// Same credentials as the application's gateway, so tests can sign
	// notifications the way the gateway would.
	gateway := payment.NewPayHereGateway(
		cfg.Gateway.MerchantID,
		cfg.Gateway.MerchantSecret,
		cfg.Gateway.CheckoutURL,
		cfg.Gateway.ReturnURL,
		cfg.Gateway.CancelURL,
		cfg.Gateway.NotifyURL,
	)

	return &TestApp{
		App:     application,
		DB:      db,
		Mailer:  mockMailer,
		Gateway: gateway,
	}, nil
}
