package geocoding

import (
	"context"
	"errors"

	"github.com/avivlevi/donormap/internal/models"
)

// ErrNoResult is returned when the provider answered successfully but found
// nothing for the query. It is distinct from transport failures and must
// never be persisted as a negative cache entry.
var ErrNoResult = errors.New("provider returned no results")

// Result is one geocoding outcome.
type Result struct {
	Coords models.Coordinates // Coords are the resolved coordinates.
	// Exact is the provider's own precision hint (rooftop or interpolated
	// match). Resolution exactness is classified from the query tier; the
	// hint is informational.
	Exact bool
}

// Provider is an interface that defines a method for geocoding a free-text
// query. Implementations apply the deployment's region bias, response
// language preference, a minimum inter-call delay and a finite timeout.
type Provider interface {
	Geocode(ctx context.Context, query string) (*Result, error)
}
