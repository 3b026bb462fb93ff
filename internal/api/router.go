package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jobhub/jobboard/internal/api/handler"
	"github.com/jobhub/jobboard/internal/api/middleware"
	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
	ops "github.com/jobhub/jobboard/internal/infrastructure/http"
	"github.com/jobhub/jobboard/internal/infrastructure/http/handlers"
)

// Dependencies is everything the router needs to serve the API.
type Dependencies struct {
	Accounts      ports.AccountService
	Notifications ports.NotificationService
	Hub           handler.PushServer
	JWTSecret     string
	// AdminLookup enables client-minted admin tokens. Leave nil outside
	// development.
	AdminLookup middleware.AccountLookup
	Pingers     map[string]handlers.Pinger
	// AuthRateLimit is requests per second per IP on the auth routes;
	// zero disables throttling.
	AuthRateLimit float64
	AuthBurst     int
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "jobboard_devapi",
		Registerer: deps.Registerer,
	}))

	ops.MountOps(e, deps.Pingers)

	authHandler := handler.NewAuthHandler(deps.Accounts)
	userHandler := handler.NewUserHandler(deps.Accounts)
	notificationHandler := handler.NewNotificationHandler(deps.Notifications)
	pushHandler := handler.NewPushHandler(deps.Hub, deps.Log)
	authMiddleware := middleware.Auth(deps.JWTSecret, deps.AdminLookup)

	api := e.Group("/api")

	// --- Auth routes ---
	var throttle []echo.MiddlewareFunc
	if deps.AuthRateLimit > 0 {
		throttle = append(throttle, middleware.RateLimit(rate.Limit(deps.AuthRateLimit), deps.AuthBurst, 10*time.Minute))
	}
	auth := api.Group("/auth", throttle...)
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/verify-otp", authHandler.VerifyOTP)
	auth.POST("/resend-otp", authHandler.ResendOTP)

	adminAuth := api.Group("/admin/auth", throttle...)
	adminAuth.POST("/login", authHandler.AdminLogin)
	adminAuth.POST("/verify-otp", authHandler.AdminVerifyOTP)

	// --- Authenticated routes ---
	users := api.Group("/users", authMiddleware)
	users.PUT("/:id/active", userHandler.SetActive)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.POST("", notificationHandler.Create, middleware.RBAC(domain.RoleAdmin))
	notifications.GET("/user/:userId", notificationHandler.List)
	notifications.GET("/user/:userId/unread-count", notificationHandler.UnreadCount)
	notifications.PUT("/user/:userId/read-all", notificationHandler.MarkAllRead)
	notifications.PUT("/read", notificationHandler.MarkManyRead)
	notifications.PUT("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.Delete)

	e.GET("/ws/notifications", pushHandler.Subscribe, authMiddleware)

	return e
}

// requestLogger writes one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
