package service_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avivlevi/donormap/internal/metrics"
	"github.com/avivlevi/donormap/internal/models"
	"github.com/avivlevi/donormap/internal/resolver"
	"github.com/avivlevi/donormap/internal/service"
	"github.com/avivlevi/donormap/test/mocks"
)

func sampleStations() []models.Station {
	return []models.Station{
		{
			Address: models.Address{
				City: "Tel Aviv", Street: "Ibn Gabirol", NumHouse: "5", Name: "Community Center",
			},
			DateDonation:  "2026-08-30T00:00:00",
			FromHour:      "09:00",
			ToHour:        "14:00",
			SchedulingURL: "https://example.org/1",
		},
		{
			Address:      models.Address{City: "Haifa", Street: "HaNamal", NumHouse: "3", Name: "Port Hall"},
			DateDonation: "2026-08-31T00:00:00",
			FromHour:     "10:00",
			ToHour:       "16:00",
		},
	}
}

type pipelineHarness struct {
	pipeline *service.Pipeline
	source   *mocks.StationSource
	store    *mocks.DonationStore
	resolver *mocks.AddressResolver
	metrics  *metrics.Metrics
}

func newPipeline(t *testing.T, missingPath string) pipelineHarness {
	t.Helper()

	source := mocks.NewStationSource(t)
	store := mocks.NewDonationStore(t)
	addressResolver := mocks.NewAddressResolver(t)
	promMetrics := metrics.NewMetrics(prometheus.NewRegistry())

	pipeline := service.NewPipeline(slog.Default(), source, store, addressResolver,
		promMetrics, time.Minute, 10, missingPath)

	return pipelineHarness{
		pipeline: pipeline,
		source:   source,
		store:    store,
		resolver: addressResolver,
		metrics:  promMetrics,
	}
}

// runOnce runs the pipeline with a context that is canceled right after the
// immediate first batch, so only that batch executes.
func runOnce(h pipelineHarness) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		h.pipeline.Run(ctx)
		close(done)
	}()

	// The mocks are synchronous, so the first batch is complete once Run
	// reaches the ticker loop. Cancel and wait for a clean shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done
}

func TestPipelineProcessesBatch(t *testing.T) {
	h := newPipeline(t, "")
	stations := sampleStations()

	h.source.On("FetchStations", mock.Anything, 10).Return(stations, nil).Once()
	h.resolver.On("Resolve", mock.Anything, stations[0].Address).
		Return(&resolver.Resolution{
			Coords: models.Coordinates{Latitude: 32.0809, Longitude: 34.7806},
			Exact:  true,
		}, nil).Once()
	h.resolver.On("Resolve", mock.Anything, stations[1].Address).
		Return(&resolver.Resolution{
			Coords: models.Coordinates{Latitude: 32.82, Longitude: 34.99},
		}, nil).Once()
	h.store.On("ReplaceDonations", mock.Anything, []models.Donation{
		{
			DonationDate: "2026-08-30", City: "Tel Aviv", Street: "Ibn Gabirol",
			NumHouse: "5", Name: "Community Center", FromHour: "09:00", ToHour: "14:00",
			SchedulingURL: "https://example.org/1", Latitude: 32.0809, Longitude: 34.7806,
			Exact: true,
		},
		{
			DonationDate: "2026-08-31", City: "Haifa", Street: "HaNamal",
			NumHouse: "3", Name: "Port Hall", FromHour: "10:00", ToHour: "16:00",
			Latitude: 32.82, Longitude: 34.99,
		},
	}).Return(nil).Once()

	runOnce(h)

	assert.InDelta(t, 2.0,
		testutil.ToFloat64(h.metrics.StationsProcessed.WithLabelValues("resolved")), 0.001)
	assert.InDelta(t, 0.0,
		testutil.ToFloat64(h.metrics.StationsProcessed.WithLabelValues("unresolved")), 0.001)
}

func TestPipelineReportsUnresolvedStations(t *testing.T) {
	defer filet.CleanUp(t)
	missingPath := filepath.Join(filet.TmpDir(t, ""), "missing.csv")

	h := newPipeline(t, missingPath)
	stations := sampleStations()

	h.source.On("FetchStations", mock.Anything, 10).Return(stations, nil).Once()
	h.resolver.On("Resolve", mock.Anything, stations[0].Address).
		Return(&resolver.Resolution{
			Coords: models.Coordinates{Latitude: 32.0809, Longitude: 34.7806},
			Exact:  true,
		}, nil).Once()
	h.resolver.On("Resolve", mock.Anything, stations[1].Address).Return(nil, nil).Once()
	h.store.On("ReplaceDonations", mock.Anything, mock.MatchedBy(func(donations []models.Donation) bool {
		return len(donations) == 1 && donations[0].City == "Tel Aviv"
	})).Return(nil).Once()

	runOnce(h)

	raw, err := os.ReadFile(missingPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Haifa,HaNamal,3,Port Hall")
	assert.NotContains(t, string(raw), "Tel Aviv")
	assert.InDelta(t, 1.0,
		testutil.ToFloat64(h.metrics.StationsProcessed.WithLabelValues("unresolved")), 0.001)
}

func TestPipelineFetchErrorSkipsBatch(t *testing.T) {
	h := newPipeline(t, "")

	h.source.On("FetchStations", mock.Anything, 10).Return(nil, assert.AnError).Once()

	runOnce(h)

	h.store.AssertNotCalled(t, "ReplaceDonations", mock.Anything, mock.Anything)
}

func TestPipelineEmptyBatchStoresNothing(t *testing.T) {
	h := newPipeline(t, "")

	h.source.On("FetchStations", mock.Anything, 10).Return([]models.Station{}, nil).Once()

	runOnce(h)

	h.store.AssertNotCalled(t, "ReplaceDonations", mock.Anything, mock.Anything)
}

func TestPipelineResolverFailureAbortsBatch(t *testing.T) {
	h := newPipeline(t, "")
	stations := sampleStations()

	h.source.On("FetchStations", mock.Anything, 10).Return(stations, nil).Once()
	h.resolver.On("Resolve", mock.Anything, stations[0].Address).
		Return(nil, assert.AnError).Once()

	runOnce(h)

	// Nothing may be persisted when the geocache is unavailable mid-batch.
	h.resolver.AssertNotCalled(t, "Resolve", mock.Anything, stations[1].Address)
	h.store.AssertNotCalled(t, "ReplaceDonations", mock.Anything, mock.Anything)
}

func TestPipelineStoreErrorIsLoggedNotFatal(t *testing.T) {
	h := newPipeline(t, "")
	stations := sampleStations()[:1]

	h.source.On("FetchStations", mock.Anything, 10).Return(stations, nil).Once()
	h.resolver.On("Resolve", mock.Anything, stations[0].Address).
		Return(&resolver.Resolution{
			Coords: models.Coordinates{Latitude: 32.0809, Longitude: 34.7806},
			Exact:  true,
		}, nil).Once()
	h.store.On("ReplaceDonations", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	runOnce(h)
}
