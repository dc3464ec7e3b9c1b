package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/users-service/docs"
	"github.com/99minutos/users-service/internal/api/handler"
	"github.com/99minutos/users-service/internal/api/middleware"
	"github.com/99minutos/users-service/internal/api/routing"
	"github.com/99minutos/users-service/internal/api/validator"
	"github.com/99minutos/users-service/internal/core/ports"
)

// Deps are the collaborators the HTTP layer needs. They are built by the
// caller; the router constructs nothing stateful on its own beyond echo.
type Deps struct {
	Users    ports.UserService
	Verifier ports.TokenVerifier
	Checks   map[string]handler.Check
	Log      zerolog.Logger

	// Registry receives the HTTP request metrics. Nil means the default
	// Prometheus registry, which also holds the custom counters.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	v := validator.New()
	e.Validator = v

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:          "users_http",
		Registerer:         registerer,
		StatusCodeResolver: responseStatus,
	}))

	// --- Users ---
	users := handler.NewUserController(d.Users, d.Verifier, v, d.Log)
	routing.Mount(e, "/users", users, d.Log)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Installed last so it sees every error forwarded by the routes above.
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	return e
}
