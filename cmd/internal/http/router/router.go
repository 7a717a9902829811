package router

import (
	"crmsync/cmd/internal/http/handler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const FormPath = "/processar_formulario"

type Options struct {
	FormRoute *handler.DefaultFormRoute
	// FormMiddleware runs only on the form route (rate limiting).
	FormMiddleware []echo.MiddlewareFunc
	// RequestIDGenerator is optional; echo's default is used when nil.
	RequestIDGenerator func() string
	// IPExtractor resolves the client IP used by rate limiting. Defaults to the
	// socket peer so forwarded headers cannot be spoofed.
	IPExtractor echo.IPExtractor
}

func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.IPExtractor = opts.IPExtractor
	if e.IPExtractor == nil {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: opts.RequestIDGenerator,
	}))
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("1M"))

	e.POST(FormPath, opts.FormRoute.ProcessForm, opts.FormMiddleware...)

	// Docker Compose healthcheck
	e.GET("/health", handler.HealthCheck)
	return e
}
