package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	StationsProcessed *prometheus.CounterVec
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	ProviderErrors    prometheus.Counter
	RequestSeconds    *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		StationsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "donormap_stations_processed_total",
			Help: "Total number of processed donation-station records.",
		}, []string{"status"}),
		CacheHits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "donormap_geocache_hits_total",
			Help: "Total number of address resolutions answered from the geocache.",
		}),
		CacheMisses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "donormap_geocache_misses_total",
			Help: "Total number of address resolutions that had to query the provider.",
		}),
		ProviderErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "donormap_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "donormap_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}
}
