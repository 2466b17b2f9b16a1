package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/avivlevi/donormap/internal/metrics"
	"github.com/avivlevi/donormap/internal/models"
	"github.com/avivlevi/donormap/internal/report"
	"github.com/avivlevi/donormap/internal/resolver"
)

// StationSource supplies raw donation-station records, usually the MDA client.
type StationSource interface {
	FetchStations(ctx context.Context, limit int) ([]models.Station, error)
}

// DonationStore persists a processed batch of donation records.
type DonationStore interface {
	ReplaceDonations(ctx context.Context, donations []models.Donation) error
}

// AddressResolver locates coordinates for one address record. A nil
// resolution means the address could not be placed.
type AddressResolver interface {
	Resolve(ctx context.Context, addr models.Address) (*resolver.Resolution, error)
}

// Pipeline periodically fetches the donation schedule, resolves station
// coordinates and replaces the persisted donation records.
type Pipeline struct {
	log          *slog.Logger
	source       StationSource
	store        DonationStore
	resolver     AddressResolver
	metrics      *metrics.Metrics
	pollInterval time.Duration // Interval between schedule refreshes
	stationLimit int           // Max records per run, 0 means all
	missingPath  string        // CSV path for unresolved stations, empty disables the report
}

// NewPipeline creates a new Pipeline instance.
func NewPipeline(
	log *slog.Logger,
	source StationSource,
	store DonationStore,
	addressResolver AddressResolver,
	metrics *metrics.Metrics,
	pollInterval time.Duration,
	stationLimit int,
	missingPath string,
) *Pipeline {
	return &Pipeline{
		log:          log,
		source:       source,
		store:        store,
		resolver:     addressResolver,
		metrics:      metrics,
		pollInterval: pollInterval,
		stationLimit: stationLimit,
		missingPath:  missingPath,
	}
}

// Run processes one batch immediately and then keeps refreshing on the poll
// interval until the context is canceled.
func (p *Pipeline) Run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.log.InfoContext(ctx, "Donation pipeline started...")

	p.processBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			p.log.InfoContext(ctx, "Donation pipeline stopped.")
			return
		case <-ticker.C:
			p.log.InfoContext(ctx, "Refreshing donation schedule...")
			p.processBatch(ctx)
		}
	}
}

// processBatch fetches the schedule and resolves stations strictly one after
// another; the provider's rate limiter is the only pacing. Stations without
// coordinates are counted, reported and dropped from the batch, never from
// future runs. A geocache failure aborts the batch so stale coordinates are
// not written.
func (p *Pipeline) processBatch(ctx context.Context) {
	stations, err := p.source.FetchStations(ctx, p.stationLimit)
	if err != nil {
		p.log.ErrorContext(ctx, "Failed to fetch donation stations", "error", err)
		return
	}
	if len(stations) == 0 {
		p.log.InfoContext(ctx, "No stations to process.")
		return
	}

	p.log.InfoContext(ctx, "Processing donation stations", "count", len(stations))

	donations := make([]models.Donation, 0, len(stations))
	var missing []models.Station

	for _, station := range stations {
		resolution, err := p.resolver.Resolve(ctx, station.Address)
		if err != nil {
			p.log.ErrorContext(ctx, "Batch aborted, geocache unavailable", "error", err)
			return
		}
		if resolution == nil {
			p.metrics.StationsProcessed.WithLabelValues("unresolved").Inc()
			missing = append(missing, station)
			p.log.WarnContext(ctx, "Missing coordinates for station",
				"city", station.City, "street", station.Street, "name", station.Name)
			continue
		}

		p.metrics.StationsProcessed.WithLabelValues("resolved").Inc()
		donations = append(donations, models.Donation{
			DonationDate:  donationDate(station.DateDonation),
			City:          strings.TrimSpace(station.City),
			Street:        strings.TrimSpace(station.Street),
			NumHouse:      strings.TrimSpace(station.NumHouse),
			Name:          strings.TrimSpace(station.Name),
			FromHour:      station.FromHour,
			ToHour:        station.ToHour,
			SchedulingURL: station.SchedulingURL,
			Latitude:      resolution.Coords.Latitude,
			Longitude:     resolution.Coords.Longitude,
			Exact:         resolution.Exact,
		})
	}

	if err = p.store.ReplaceDonations(ctx, donations); err != nil {
		p.log.ErrorContext(ctx, "Failed to store donation batch", "error", err)
		return
	}

	if p.missingPath != "" {
		if err = report.WriteMissing(p.missingPath, missing); err != nil {
			p.log.ErrorContext(ctx, "Failed to write missing report", "error", err)
		}
	}

	p.log.InfoContext(ctx, "Processing batch finished",
		"resolved", len(donations), "unresolved", len(missing))
}

// donationDate trims the time part off the raw schedule timestamp.
func donationDate(raw string) string {
	if idx := strings.IndexByte(raw, 'T'); idx >= 0 {
		return raw[:idx]
	}

	return raw
}
