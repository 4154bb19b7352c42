package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/bioacademy-lk/platform-api/internal/domain"
	"github.com/bioacademy-lk/platform-api/internal/enrollment"
	"github.com/bioacademy-lk/platform-api/internal/mailer"
	"github.com/bioacademy-lk/platform-api/internal/payment"
	"github.com/bioacademy-lk/platform-api/internal/repository"
	appvalidator "github.com/bioacademy-lk/platform-api/internal/validator"
	"github.com/bioacademy-lk/platform-api/internal/vcs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager

	userRepo       domain.UserRepository
	tokenRepo      domain.TokenRepository
	courseRepo     domain.CourseRepository
	enrollmentRepo domain.EnrollmentRepository

	gateway  domain.PaymentGateway
	workflow *enrollment.Workflow
	metrics  *metrics
}

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Gateway          GatewayConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type GatewayConfig struct {
	MerchantID     string
	MerchantSecret string
	CheckoutURL    string
	ReturnURL      string
	CancelURL      string
	NotifyURL      string
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "BioAcademy <no-reply@bioacademy.lk>", "SMTP sender")

	flag.StringVar(&cfg.Gateway.MerchantID, "gateway-merchant-id", "", "Payment gateway merchant id")
	flag.StringVar(&cfg.Gateway.MerchantSecret, "gateway-merchant-secret", "", "Payment gateway merchant secret")
	flag.StringVar(&cfg.Gateway.CheckoutURL, "gateway-checkout-url", "https://sandbox.payhere.lk/pay/checkout", "Payment gateway checkout page")
	flag.StringVar(&cfg.Gateway.ReturnURL, "gateway-return-url", "https://bioacademy.lk/payment/return", "Post-payment return page")
	flag.StringVar(&cfg.Gateway.CancelURL, "gateway-cancel-url", "https://bioacademy.lk/payment/cancel", "Payment cancel page")
	flag.StringVar(&cfg.Gateway.NotifyURL, "gateway-notify-url", "https://api.bioacademy.lk/payment/notify", "Server-to-server notification endpoint")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	app, err := New(cfg)
	if err != nil {
		return err
	}
	defer app.db.Close()
	defer app.redis.Close()

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if app.config.OtelCollectorUrl != "" {
		app.logger = slog.New(NewMultiHandler(
			slog.NewTextHandler(os.Stdout, nil),
			otelslog.NewHandler("bioacademy-api"),
		))
	}

	return app.run()
}

type Option func(*Application)

// WithMailer overrides the SMTP mailer, used by tests to capture outbound mail.
func WithMailer(m mailer.Mailer) Option {
	return func(app *Application) {
		app.mailer = m
	}
}

func New(cfg Config, opts ...Option) (*Application, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	gateway := payment.NewPayHereGateway(
		cfg.Gateway.MerchantID,
		cfg.Gateway.MerchantSecret,
		cfg.Gateway.CheckoutURL,
		cfg.Gateway.ReturnURL,
		cfg.Gateway.CancelURL,
		cfg.Gateway.NotifyURL,
	)

	appMetrics, err := newMetrics()
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	app := &Application{
		config:         cfg,
		logger:         logger,
		db:             db,
		redis:          redisClient,
		validator:      appvalidator.NewValidator(),
		mailer:         mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		sessionManager: NewSessionManager(redisClient),
		userRepo:       repository.NewPostgresUserRepository(db),
		tokenRepo:      repository.NewPostgresTokenRepository(db),
		courseRepo:     repository.NewPostgresCourseRepository(db),
		enrollmentRepo: repository.NewPostgresEnrollmentRepository(db),
		gateway:        gateway,
		metrics:        appMetrics,
	}

	for _, opt := range opts {
		opt(app)
	}

	app.workflow = enrollment.NewWorkflow(
		app.courseRepo,
		app.enrollmentRepo,
		app.userRepo,
		app.gateway,
		app.mailer,
		app.logger,
	)

	return app, nil
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentMetrics(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("bioacademy-api", otelchi.WithChiRoutes(r)))
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestUserSession)

	r.Get("/health", app.GetHealth)

	r.Post("/users", app.RegisterUser)
	r.Put("/users/activated", app.ActivateUser)
	r.Post("/sessions", app.Login)
	r.Delete("/sessions", app.Logout)

	r.Get("/courses", app.GetCourses)
	r.Get("/courses/{courseId}", app.GetCourseById)

	r.With(app.requireAuthentication).Get("/users/me", app.GetCurrentUser)
	r.With(app.requireAuthentication).Get("/users/me/enrollments", app.GetEnrollmentsOfUserHandler)

	r.With(app.requireAuthentication).Post("/courses/{courseId}/checkout", app.CreateCheckoutHandler)

	r.Route("/payment", func(r chi.Router) {
		r.Post("/notify", app.PaymentNotifyHandler)
		r.Get("/return", app.PaymentReturnHandler)
		r.Get("/cancel", app.PaymentCancelHandler)
	})

	return r
}
