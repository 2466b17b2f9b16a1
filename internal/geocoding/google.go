package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"

	"github.com/avivlevi/donormap/internal/models"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client   GoogleAPIClient // client is the Google Maps API client
	region   string          // region is the country bias, e.g. "IL"
	language string          // language is the preferred response language, e.g. "iw"
	log      *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given client,
// country bias and response language. Rate limiting and request timeouts are
// configured on the client itself, see the provider factory.
func NewGoogleProvider(client GoogleAPIClient, region, language string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, region: region, language: language, log: log}
}

// Geocode takes a free-text query and returns the coordinates of the best
// match reported by the Google Maps Geocoding API. Requests are biased to the
// configured country and response language to reduce ambiguous matches. A
// response with zero results yields ErrNoResult; the precision hint is true
// for rooftop and range-interpolated matches.
func (gp *GoogleProvider) Geocode(ctx context.Context, query string) (*Result, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "query", query)

	req := maps.GeocodingRequest{Address: query, Language: gp.language}
	if gp.region != "" {
		req.Components = map[maps.Component]string{maps.ComponentCountry: gp.region}
	}

	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode query: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrNoResult
	}

	best := geocodeResponse[0]
	coords := best.Geometry.Location
	exact := best.Geometry.LocationType == "ROOFTOP" || best.Geometry.LocationType == "RANGE_INTERPOLATED"

	return &Result{
		Coords: models.Coordinates{Latitude: coords.Lat, Longitude: coords.Lng},
		Exact:  exact,
	}, nil
}
