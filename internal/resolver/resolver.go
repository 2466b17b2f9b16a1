// Package resolver locates coordinates for donation-station address records,
// consulting the persistent geocache before falling back to tiered provider
// queries.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avivlevi/donormap/internal/address"
	"github.com/avivlevi/donormap/internal/geocoding"
	"github.com/avivlevi/donormap/internal/metrics"
	"github.com/avivlevi/donormap/internal/models"
)

// CacheStore is the persistent key -> (coordinates, exactness) mapping the
// resolver reads and writes. A lookup miss is (nil, nil), not an error.
type CacheStore interface {
	GetCachedLocation(ctx context.Context, key string) (*models.CacheEntry, error)
	SaveLocation(ctx context.Context, key string, coords models.Coordinates, isExact bool) error
}

// Resolution is the outcome of a successful address resolution.
type Resolution struct {
	Coords models.Coordinates
	Exact  bool // false signals a city-centroid-level approximation
}

// Resolver orchestrates cache lookup, fallback query iteration, provider
// invocation and cache write-back for one address record at a time.
type Resolver struct {
	log          *slog.Logger
	cache        CacheStore
	provider     geocoding.Provider
	providerName string
	metrics      *metrics.Metrics
}

// New creates a Resolver. The provider name is only used as a metrics label.
func New(
	log *slog.Logger,
	cache CacheStore,
	provider geocoding.Provider,
	providerName string,
	metrics *metrics.Metrics,
) *Resolver {
	return &Resolver{
		log:          log,
		cache:        cache,
		provider:     provider,
		providerName: providerName,
		metrics:      metrics,
	}
}

// Resolve returns coordinates for the record, or nil when every candidate
// query in every script variant fails. A cache hit short-circuits all
// provider work. Unresolved addresses are never cached, so they are retried
// on later runs. The only error condition is an unavailable cache store;
// provider failures are absorbed by falling through to less specific queries.
func (r *Resolver) Resolve(ctx context.Context, addr models.Address) (*Resolution, error) {
	key := address.Key(addr)

	entry, err := r.cache.GetCachedLocation(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read geocache: %w", err)
	}
	if entry != nil {
		r.metrics.CacheHits.Inc()
		return &Resolution{Coords: entry.Coords, Exact: entry.Exact}, nil
	}
	r.metrics.CacheMisses.Inc()

	for _, candidate := range address.Candidates(addr) {
		start := time.Now()
		result, err := r.provider.Geocode(ctx, candidate.Text)
		r.metrics.RequestSeconds.WithLabelValues(r.providerName).Observe(time.Since(start).Seconds())

		if errors.Is(err, geocoding.ErrNoResult) {
			r.log.DebugContext(ctx, "Candidate query returned no results", "key", key, "query", candidate.Text)
			continue
		}
		if err != nil {
			r.metrics.ProviderErrors.Inc()
			r.log.WarnContext(ctx, "Candidate query failed, trying next fallback",
				"key", key, "query", candidate.Text, "error", err)
			continue
		}

		// Exactness comes from the winning query tier; the provider's own
		// precision hint is informational only.
		if result.Exact != candidate.Exact {
			r.log.DebugContext(ctx, "Provider precision hint disagrees with query tier",
				"query", candidate.Text, "hint", result.Exact, "tier_exact", candidate.Exact)
		}

		if err = r.cache.SaveLocation(ctx, key, result.Coords, candidate.Exact); err != nil {
			return nil, fmt.Errorf("failed to write geocache: %w", err)
		}

		r.log.DebugContext(ctx, "Address resolved", "key", key, "query", candidate.Text,
			"lat", result.Coords.Latitude, "lon", result.Coords.Longitude, "exact", candidate.Exact)

		return &Resolution{Coords: result.Coords, Exact: candidate.Exact}, nil
	}

	r.log.InfoContext(ctx, "All candidate queries exhausted", "key", key)

	return nil, nil
}
