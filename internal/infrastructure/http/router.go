package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/videotube/user-service/internal/infrastructure/http/handlers"
)

// OpsOptions configures the operational routes shared by every deployment.
type OpsOptions struct {
	// Dependencies are probed by the readiness route.
	Dependencies []handlers.Dependency
	// Registerer receives the HTTP request metrics. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Swagger mounts the API docs under /swagger/*.
	Swagger bool
}

// RegisterOps installs the request metrics middleware and mounts the health
// probes, /metrics and optionally the Swagger UI on e.
func RegisterOps(e *echo.Echo, opts OpsOptions) {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: opts.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Health probes (no auth required) ---
	health := handlers.NewHealthHandler(opts.Dependencies...)
	e.GET("/health", health.Liveness)       // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	if opts.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}
}
