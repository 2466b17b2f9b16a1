// Package mda fetches raw donation-station records from the MDA public
// schedule API. The API requires a session cookie and an anti-forgery token
// obtained from the blood-donation landing page.
package mda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"regexp"
	"time"

	"github.com/tidwall/gjson"

	"github.com/avivlevi/donormap/internal/models"
)

const (
	defaultAPIURL     = "https://www.mdais.org/umbraco/api/invoker/execute"
	defaultLandingURL = "https://www.mdais.org/blood-donation"
)

// ErrMissingResult is returned when the API response lacks the Result payload.
var ErrMissingResult = errors.New("mda API response has no Result payload")

var csrfTokenRe = regexp.MustCompile(`name="__RequestVerificationToken"\s+value="([^"]+)"`)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches donation-station records from the schedule provider.
type Client struct {
	http       HTTPClient
	apiURL     string
	landingURL string
	log        *slog.Logger
}

// NewClient creates a Client against the public MDA endpoints. The underlying
// HTTP client carries a cookie jar because the API rejects requests without
// the session cookies set by the landing page.
func NewClient(log *slog.Logger) *Client {
	jar, _ := cookiejar.New(nil)

	return &Client{
		http:       &http.Client{Timeout: 30 * time.Second, Jar: jar},
		apiURL:     defaultAPIURL,
		landingURL: defaultLandingURL,
		log:        log,
	}
}

// NewClientWithURLs creates a Client with a custom HTTP client and endpoint
// URLs. Useful for tests against an httptest server.
func NewClientWithURLs(client HTTPClient, apiURL, landingURL string, log *slog.Logger) *Client {
	return &Client{http: client, apiURL: apiURL, landingURL: landingURL, log: log}
}

// FetchStations retrieves donation-station records. It first visits the
// landing page to obtain cookies and the anti-forgery token, then posts the
// GetAllDetailsDonations envelope. When limit is positive only the first
// limit records are returned.
func (c *Client) FetchStations(ctx context.Context, limit int) ([]models.Station, error) {
	token, err := c.visitLandingPage(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"RequestHeader": map[string]any{
			"Application": 101,
			"Module":      "BloodBank",
			"Function":    "GetAllDetailsDonations",
			"Token":       "",
		},
		"RequestData": "",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", c.landingURL)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if token != "" {
		req.Header.Set("__RequestVerificationToken", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mda API returned status %d: %s", resp.StatusCode, string(raw))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return c.parseStations(ctx, raw, limit)
}

// visitLandingPage loads the landing page for its session cookies and
// extracts the anti-forgery token when present. A missing token is not an
// error: the API accepts tokenless requests from fresh sessions.
func (c *Client) visitLandingPage(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.landingURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create landing request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to load landing page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("landing page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read landing page: %w", err)
	}

	if match := csrfTokenRe.FindSubmatch(body); match != nil {
		return string(match[1]), nil
	}

	c.log.DebugContext(ctx, "No anti-forgery token on landing page")

	return "", nil
}

// parseStations decodes the API envelope. The Result field is a JSON string
// that itself contains the record array.
func (c *Client) parseStations(ctx context.Context, raw []byte, limit int) ([]models.Station, error) {
	result := gjson.GetBytes(raw, "Result")
	if !result.Exists() || result.String() == "" {
		return nil, ErrMissingResult
	}

	records := gjson.Parse(result.String())
	if !records.IsArray() {
		return nil, fmt.Errorf("%w: Result is not an array", ErrMissingResult)
	}

	var stations []models.Station
	records.ForEach(func(_, record gjson.Result) bool {
		stations = append(stations, models.Station{
			Address: models.Address{
				City:     record.Get("City").String(),
				Street:   record.Get("Street").String(),
				NumHouse: record.Get("NumHouse").String(),
				Name:     record.Get("Name").String(),
			},
			DateDonation:  record.Get("DateDonation").String(),
			FromHour:      record.Get("FromHour").String(),
			ToHour:        record.Get("ToHour").String(),
			SchedulingURL: record.Get("SchedulingURL").String(),
		})
		return limit <= 0 || len(stations) < limit
	})

	c.log.DebugContext(ctx, "Fetched donation stations", "count", len(stations), "limit", limit)

	return stations, nil
}
