package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/internhub/portal/internal/api/handler"
	"github.com/internhub/portal/internal/api/middleware"
	"github.com/internhub/portal/internal/core/domain"
	"github.com/internhub/portal/internal/core/ports"
	"github.com/internhub/portal/internal/core/service"
	"github.com/internhub/portal/internal/core/validation"
)

// Dependencies are the components the router wires into handlers.
type Dependencies struct {
	Log       zerolog.Logger
	Store     ports.SessionStore
	Backend   ports.Backend
	Shared    *service.ContextProvider
	Validator *validation.Validator
	// Ready lists the dependencies checked by the readiness probe.
	Ready     map[string]handler.Pinger
	AssetsDir string
	// Registerer receives the request metrics; nil means the default registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Store)
	e.Validator = handler.NewValidator(d.Validator.Engine())
	e.Renderer = handler.NewTemplateRenderer()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "portal",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	gate := middleware.Gate
	evaluator := service.NewGate(d.Store, d.Log.With().Str("component", "gate").Logger())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Backend, d.Store, d.Log)
	formHandler := handler.NewFormHandler(d.Validator, d.Backend, d.Log)
	clockHandler := handler.NewClockHandler(d.Shared)
	proxyHandler := handler.NewProxyHandler(d.Backend, d.Log)
	pageHandler := handler.NewPageHandler(d.Shared)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	// --- API routes ---
	apiGroup := e.Group("/api")
	apiGroup.GET("/session", authHandler.Session, gate(evaluator))
	apiGroup.GET("/clock", clockHandler.Clock)
	apiGroup.GET("/clock/stream", clockHandler.Stream, gate(evaluator))
	apiGroup.POST("/forms/:form/validate", formHandler.Validate)

	apiGroup.GET("/tasks/selected", clockHandler.SelectedTask, gate(evaluator, domain.RoleEmployee))
	apiGroup.PUT("/tasks/selected", clockHandler.SelectTask, gate(evaluator, domain.RoleEmployee))
	apiGroup.POST("/interns", formHandler.RegisterIntern, gate(evaluator, domain.RoleAdmin))
	apiGroup.PUT("/profile", formHandler.UpdateProfile, gate(evaluator))
	apiGroup.PUT("/password", formHandler.ChangePassword, gate(evaluator))
	apiGroup.Any("/backend/*", proxyHandler.Forward, gate(evaluator))

	// --- Pages ---
	for _, p := range Pages {
		if p.Public {
			e.GET(p.Path, pageHandler.Page(p.Title))
			continue
		}
		e.GET(p.Path, pageHandler.Page(p.Title), gate(evaluator, p.Roles...))
	}
	if d.AssetsDir != "" {
		e.Static("/assets", d.AssetsDir)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Ready)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger feeds echo's request log into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/health" || p == "/metrics" || p == "/api/clock/stream"
		},
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
