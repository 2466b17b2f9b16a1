package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeGoogle represents Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim geocoding provider.
	ProviderTypeNominatim ProviderType = "nominatim"
)

// requestTimeout bounds a single outbound provider call.
const requestTimeout = 10 * time.Second

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type     ProviderType  // Type of provider to create
	APIKey   string        // API key (used by Google provider)
	Region   string        // Country bias, ISO code ("IL")
	Language string        // Preferred response language ("iw")
	MinDelay time.Duration // Minimum interval between outbound calls
	Logger   *slog.Logger  // Logger for the provider
}

// NewProvider creates a geocoding provider based on the provided
// configuration. It applies the Factory pattern to decouple provider
// instantiation from the resolution logic.
//
// Supported provider types:
// - "google": Google Maps Geocoding API (requires API key)
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required)
//
// Returns an error if the provider type is unsupported or if provider
// creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeNominatim:
		return NewNominatimProvider(config.Region, config.Language, config.MinDelay, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// newGoogleProvider creates a Google Maps geocoding provider. The minimum
// inter-call delay is translated into the maps client's requests-per-second
// limit so pacing happens inside the client.
func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	qps := 1
	if config.MinDelay > 0 {
		if limit := int(time.Second / config.MinDelay); limit > 0 {
			qps = limit
		}
	}

	client, err := maps.NewClient(
		maps.WithAPIKey(config.APIKey),
		maps.WithRateLimit(qps),
		maps.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Region, config.Language, config.Logger), nil
}
