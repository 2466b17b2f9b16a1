// Package server exposes the processed donation records to the map frontend
// over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avivlevi/donormap/internal/models"
)

// DonationReader is the read side of the repository the API serves from.
type DonationReader interface {
	DonationsByDate(ctx context.Context, date string) ([]models.Donation, error)
	Cities(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// Server wraps the Echo server.
type Server struct {
	echo *echo.Echo
}

// New creates the donation API server with its routes registered.
func New(reader DonationReader, reg *prometheus.Registry, log *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.InfoContext(c.Request().Context(), "Request handled",
				"uri", v.URI, "status", v.Status, "error", v.Error)
			return nil
		},
	}))

	handler := NewHandler(reader, log)

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	e.GET("/donations", handler.Donations)
	e.GET("/cities", handler.Cities)

	return &Server{echo: e}
}

// Start starts the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements http.Handler so the server can be driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
