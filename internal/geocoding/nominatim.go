package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/avivlevi/donormap/internal/models"
)

// NominatimProvider implements the Provider interface using OpenStreetMap's
// Nominatim API. This is a free geocoding service with usage limits
// (1 request/second for fair use), enforced here with a rate limiter.
type NominatimProvider struct {
	client   HTTPClient    // HTTP client for making requests
	baseURL  string        // Base URL for the Nominatim API
	region   string        // ISO country code bias, lowercased into countrycodes
	language string        // Preferred response language
	log      *slog.Logger  // Logger for logging operations
	limiter  *rate.Limiter // Rate limiter pacing outbound calls
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResponse represents the JSON response from Nominatim API.
type nominatimResponse struct {
	Lat         string `json:"lat"`         // Latitude as string
	Lon         string `json:"lon"`         // Longitude as string
	AddressType string `json:"addresstype"` // e.g. "house", "road", "city"
}

// ErrNominatimInvalidCoords is returned when the API responds with
// coordinates that cannot be parsed.
var ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")

// NewNominatimProvider creates a new Nominatim geocoding provider against the
// public API endpoint. minDelay is the minimum interval between outbound
// calls; the public instance requires at least one second.
func NewNominatimProvider(region, language string, minDelay time.Duration, log *slog.Logger) *NominatimProvider {
	const timeout = 10 * time.Second
	if minDelay < time.Second {
		minDelay = time.Second
	}

	return NewNominatimProviderWithClient(
		&http.Client{Timeout: timeout},
		region,
		language,
		rate.NewLimiter(rate.Every(minDelay), 1),
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom
// HTTP client and limiter. Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(
	client HTTPClient,
	region, language string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *NominatimProvider {
	return &NominatimProvider{
		client:   client,
		baseURL:  "https://nominatim.openstreetmap.org/search",
		region:   region,
		language: language,
		log:      log,
		limiter:  limiter,
		// User-Agent MUST include valid contact info per Nominatim usage policy:
		// https://operations.osmfoundation.org/policies/nominatim/
		userAgent: "donormap/1.0 (https://github.com/avivlevi/donormap)",
	}
}

// Geocode converts a free-text query to geographic coordinates using the
// Nominatim API, biased to the configured country and response language.
// Zero results yield ErrNoResult.
func (np *NominatimProvider) Geocode(ctx context.Context, query string) (*Result, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	np.log.DebugContext(ctx, "Geocoding using Nominatim", "query", query)

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	params := reqURL.Query()
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")
	if np.region != "" {
		params.Set("countrycodes", strings.ToLower(np.region))
	}
	if np.language != "" {
		params.Set("accept-language", np.language)
	}
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Required headers per Nominatim usage policy
	req.Header.Set("User-Agent", np.userAgent)
	if np.language != "" {
		req.Header.Set("Accept-Language", np.language)
	}

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNoResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, results[0].Lon)
	}

	np.log.DebugContext(ctx, "Nominatim found result", "lat", lat, "lon", lon, "type", results[0].AddressType)

	exact := results[0].AddressType == "house" || results[0].AddressType == "building"

	return &Result{
		Coords: models.Coordinates{Latitude: lat, Longitude: lon},
		Exact:  exact,
	}, nil
}
