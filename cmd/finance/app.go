package main

import (
	"fmt"
	"log/slog"

	"finance-tracker/internal/amqp"
	"finance-tracker/internal/config"
	"finance-tracker/internal/database"
	"finance-tracker/internal/handlers"
	"finance-tracker/internal/logger"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/router"
	"finance-tracker/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// app holds the shared dependencies every command builds on
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	db          *database.DB
	metrics     services.MetricsRecorderInterface
	auditLogger services.AuditLoggerInterface
	broker      *amqp.Client

	users         repositories.UserRepositoryInterface
	authTokens    repositories.AuthTokenRepositoryInterface
	refreshTokens repositories.RefreshTokenRepositoryInterface
	blacklist     repositories.BlacklistedTokenRepositoryInterface
	auditLogs     repositories.AuditLogRepositoryInterface
	categories    repositories.CategoryRepositoryInterface
	transactions  repositories.TransactionRepositoryInterface
	goals         repositories.GoalRepositoryInterface
	notifications repositories.NotificationRepositoryInterface
	jobs          repositories.NotificationJobRepositoryInterface

	publisher           services.JobPublisherInterface
	auditService        services.AuditServiceInterface
	notificationService services.NotificationServiceInterface
}

// newApp opens the database, brings the schema up to date and connects to
// the broker when one is configured.
func newApp(c *config.Config, l *slog.Logger) (*app, error) {
	db, err := database.Initialize(c)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &app{
		cfg:         c,
		logger:      l,
		db:          db,
		metrics:     services.NewPrometheusMetrics(prometheus.DefaultRegisterer),
		auditLogger: services.NewAuditLogger(l),

		users:         repositories.NewUserRepository(db.DB),
		authTokens:    repositories.NewAuthTokenRepository(db.DB),
		refreshTokens: repositories.NewRefreshTokenRepository(db.DB),
		blacklist:     repositories.NewBlacklistedTokenRepository(db.DB),
		auditLogs:     repositories.NewAuditLogRepository(db.DB),
		categories:    repositories.NewCategoryRepository(db.DB),
		transactions:  repositories.NewTransactionRepository(db.DB),
		goals:         repositories.NewGoalRepository(db.DB),
		notifications: repositories.NewNotificationRepository(db.DB),
		jobs:          repositories.NewNotificationJobRepository(db.DB),
	}

	a.auditService = services.NewAuditService(a.auditLogs, l)
	a.notificationService = services.NewNotificationService(a.notifications, c.Pagination)

	if c.AMQP.Enabled() {
		breaker := services.NewCircuitBreaker(
			services.DefaultCircuitBreakerConfig(),
			services.BreakerStateLogger("amqp", a.auditLogger, a.metrics),
		)
		a.broker, err = amqp.NewClient(c.AMQP, breaker, l)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to connect to message broker: %w", err)
		}
		a.publisher = services.NewAMQPJobPublisher(a.broker, a.auditLogger, a.metrics)
	} else {
		a.publisher = services.NewDatabaseJobPublisher(a.jobs, a.auditLogger, a.metrics, c.Scheduler.JobMaxRetries)
	}

	return a, nil
}

func (a *app) Close() {
	if a.broker != nil {
		if err := a.broker.Close(); err != nil {
			a.logger.Warn("failed to close broker connection", logger.FieldError, err)
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", logger.FieldError, err)
	}
}

func (a *app) mailer() services.MailerInterface {
	breaker := services.NewCircuitBreaker(
		services.DefaultCircuitBreakerConfig(),
		services.BreakerStateLogger("smtp", a.auditLogger, a.metrics),
	)
	return services.NewMailer(a.cfg.SMTP, breaker, a.metrics, a.logger)
}

// jobWorker consumes from the broker when one is configured and polls the
// job table otherwise.
func (a *app) jobWorker() services.JobWorkerInterface {
	handler := services.NewNotificationJobHandler(a.users, a.notificationService, a.mailer(), a.logger)

	if a.broker != nil {
		return services.NewAMQPJobWorker(a.broker, handler, a.auditLogger, a.metrics, a.logger)
	}
	return services.NewDatabaseJobWorker(a.jobs, handler, a.auditLogger, a.metrics, a.cfg.Scheduler, a.logger)
}

func (a *app) deadlineScanner() *services.DeadlineScanner {
	return services.NewDeadlineScanner(a.goals, a.publisher, a.auditLogger, a.metrics, a.cfg.Scheduler, a.logger)
}

func (a *app) maintenance() services.MaintenanceServiceInterface {
	return services.NewMaintenanceService(a.refreshTokens, a.blacklist, a.jobs, a.auditService, a.logger)
}

// httpHandler wires services and handlers into the route table
func (a *app) httpHandler(rateLimiter *middleware.RateLimiter) *echo.Echo {
	c := a.cfg

	passwordService := services.NewPasswordService(c.Security)
	tokenService := services.NewTokenService(&c.JWT)
	media := services.NewLocalMediaStorage(c.Media)

	authService := services.NewAuthService(
		a.users, a.authTokens, a.refreshTokens, a.blacklist,
		passwordService, tokenService, a.auditService, a.metrics,
		c.Security.MaxFailedAttempts, a.logger,
	)
	profileService := services.NewProfileService(a.users, passwordService, media, a.auditService, c.Media, a.logger)
	categoryService := services.NewCategoryService(a.categories)
	transactionService := services.NewTransactionService(a.transactions, a.categories, c.Pagination)
	goalService := services.NewGoalService(a.goals, a.publisher, a.auditLogger, a.logger)
	dashboardService := services.NewDashboardService(a.transactions, a.goals)

	h := router.Handlers{
		Auth:         handlers.NewAuthHandler(authService, media),
		Profile:      handlers.NewProfileHandler(profileService, a.auditService, media, c.Media, c.Pagination),
		Category:     handlers.NewCategoryHandler(categoryService),
		Transaction:  handlers.NewTransactionHandler(transactionService),
		Goal:         handlers.NewGoalHandler(goalService),
		Notification: handlers.NewNotificationHandler(a.notificationService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		Health:       handlers.NewHealthCheckHandler(a.db),
	}

	return router.New(h, router.Options{
		Server:       c.Server,
		Media:        c.Media,
		TokenService: tokenService,
		AuthService:  authService,
		RateLimiter:  rateLimiter,
		Logger:       a.logger,
	})
}
