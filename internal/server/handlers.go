package server

import (
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avivlevi/donormap/internal/models"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Handler holds the HTTP handlers for the donation API.
type Handler struct {
	reader DonationReader
	log    *slog.Logger
}

// NewHandler creates a new handler backed by the given reader.
func NewHandler(reader DonationReader, log *slog.Logger) *Handler {
	return &Handler{reader: reader, log: log}
}

// Donations handles GET /donations?date=YYYY-MM-DD. The date defaults to
// today.
func (h *Handler) Donations(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if !dateRe.MatchString(date) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "date must be in YYYY-MM-DD format"})
	}

	donations, err := h.reader.DonationsByDate(c.Request().Context(), date)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "Failed to read donations", "date", date, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}
	if donations == nil {
		donations = []models.Donation{}
	}

	return c.JSON(http.StatusOK, donations)
}

// Cities handles GET /cities.
func (h *Handler) Cities(c echo.Context) error {
	cities, err := h.reader.Cities(c.Request().Context())
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "Failed to read cities", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "database error"})
	}
	if cities == nil {
		cities = []string{}
	}

	return c.JSON(http.StatusOK, cities)
}

// Health handles GET /healthz with a database ping.
func (h *Handler) Health(c echo.Context) error {
	if err := h.reader.Ping(c.Request().Context()); err != nil {
		return c.String(http.StatusServiceUnavailable, "DB ping failed")
	}

	return c.String(http.StatusOK, "OK")
}
