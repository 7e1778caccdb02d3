package router

import (
	"log/slog"
	"net/http"
	"strings"

	"finance-tracker/internal/config"
	"finance-tracker/internal/handlers"
	"finance-tracker/internal/middleware"
	"finance-tracker/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups the HTTP handlers mounted by New
type Handlers struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Category     *handlers.CategoryHandler
	Transaction  *handlers.TransactionHandler
	Goal         *handlers.GoalHandler
	Notification *handlers.NotificationHandler
	Dashboard    *handlers.DashboardHandler
	Health       *handlers.HealthCheckHandler
}

// Options carries the collaborators the middleware chain needs
type Options struct {
	Server       config.ServerConfig
	Media        config.MediaConfig
	TokenService services.TokenServiceInterface
	AuthService  services.AuthServiceInterface
	RateLimiter  *middleware.RateLimiter
	Logger       *slog.Logger
	Gatherer     http.Handler
}

// New builds the echo instance with the full route table. API paths end
// with a slash; requests without one are rewritten before routing.
func New(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler
	e.Validator = handlers.NewValidator()

	mediaPrefix := opts.Media.URLPrefix
	if mediaPrefix == "" {
		mediaPrefix = "/media/"
	}

	e.Pre(echomw.AddTrailingSlashWithConfig(echomw.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, "/api/")
		},
	}))

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(middleware.PanicRecovery(opts.Logger))
	e.Use(middleware.SecurityHeaders(mediaPrefix))
	e.Use(echomw.CORSWithConfig(corsConfig(opts.Server)))
	if opts.RateLimiter != nil {
		e.Use(opts.RateLimiter.Middleware())
	}

	e.GET("/health", h.Health.HealthCheck)

	metrics := opts.Gatherer
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	e.GET("/metrics", echo.WrapHandler(metrics))

	if opts.Media.Root != "" {
		e.Static(strings.TrimSuffix(mediaPrefix, "/"), opts.Media.Root)
	}

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login/", h.Auth.Login)
	auth.POST("/register/", h.Auth.Register)
	auth.POST("/token/refresh/", h.Auth.RefreshToken)

	requireAuth := middleware.RequireAuth(opts.TokenService, opts.AuthService)

	account := api.Group("/auth", requireAuth)
	account.POST("/logout/", h.Auth.Logout)
	account.GET("/me/", h.Auth.Me)
	account.GET("/profile/", h.Profile.GetProfile)
	account.PATCH("/profile/", h.Profile.UpdateProfile)
	account.PATCH("/settings/", h.Profile.UpdateSettings)
	account.DELETE("/delete/", h.Profile.DeleteAccount)
	account.GET("/activity/", h.Profile.Activity)

	transactions := api.Group("/transactions", requireAuth)
	transactions.GET("/", h.Transaction.ListTransactions)
	transactions.POST("/", h.Transaction.CreateTransaction)
	transactions.GET("/summary/", h.Transaction.Summary)
	transactions.GET("/trends/", h.Transaction.Trends)
	transactions.GET("/by-category/", h.Transaction.ByCategory)
	transactions.GET("/:id/", h.Transaction.GetTransaction)
	transactions.PUT("/:id/", h.Transaction.ReplaceTransaction)
	transactions.PATCH("/:id/", h.Transaction.PatchTransaction)
	transactions.DELETE("/:id/", h.Transaction.DeleteTransaction)

	categories := api.Group("/categories", requireAuth)
	categories.GET("/", h.Category.ListCategories)
	categories.POST("/", h.Category.CreateCategory)
	categories.GET("/:id/", h.Category.GetCategory)
	categories.PUT("/:id/", h.Category.ReplaceCategory)
	categories.PATCH("/:id/", h.Category.PatchCategory)
	categories.DELETE("/:id/", h.Category.DeleteCategory)

	goals := api.Group("/goals", requireAuth)
	goals.GET("/", h.Goal.ListGoals)
	goals.POST("/", h.Goal.CreateGoal)
	goals.GET("/:id/", h.Goal.GetGoal)
	goals.PUT("/:id/", h.Goal.ReplaceGoal)
	goals.PATCH("/:id/", h.Goal.PatchGoal)
	goals.DELETE("/:id/", h.Goal.DeleteGoal)
	goals.POST("/:id/update_progress/", h.Goal.UpdateProgress)

	notifications := api.Group("/notifications", requireAuth)
	notifications.GET("/", h.Notification.ListNotifications)
	notifications.POST("/mark-all-read/", h.Notification.MarkAllRead)
	notifications.GET("/unread-count/", h.Notification.UnreadCount)
	notifications.POST("/:id/read/", h.Notification.MarkRead)
	notifications.DELETE("/:id/", h.Notification.DeleteNotification)

	dashboard := api.Group("/dashboard", requireAuth)
	dashboard.GET("/stats/", h.Dashboard.Stats)

	return e
}

func corsConfig(server config.ServerConfig) echomw.CORSConfig {
	origins := server.CORSAllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return echomw.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, middleware.TraceIDHeader,
		},
		ExposeHeaders: []string{middleware.TraceIDHeader},
		MaxAge:        3600,
	}
}
