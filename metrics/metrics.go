package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netcov_requests_total",
		Help: "Total number of HTTP requests by route and status code",
	}, []string{"route", "code"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "netcov_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"route"})
	LookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netcov_lookups_total",
		Help: "Total number of closest point lookups by operator and outcome",
	}, []string{"operator", "outcome"})
	LookupDistanceKm = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "netcov_lookup_distance_km",
		Help:    "Distance between target and closest site in kilometers",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50},
	})
	DatasetBuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netcov_dataset_builds_total",
		Help: "Total number of dataset builds by outcome",
	}, []string{"outcome"})
	DatasetBuildDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "netcov_dataset_build_duration_ms",
		Help:    "Dataset build duration in milliseconds",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000},
	})
	DatasetRecords = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "netcov_dataset_records",
		Help: "Number of records within a built dataset",
	}, []string{"dataset"})
	GeocoderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netcov_geocoder_requests_total",
		Help: "Total geocoder requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
	GeocoderDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "netcov_geocoder_duration_ms",
		Help:    "Geocoder call duration in milliseconds",
		Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"endpoint"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netcov_geocoder_cache_hits_total",
		Help: "Total redis cache hits of the geocoder",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netcov_geocoder_cache_misses_total",
		Help: "Total redis cache misses of the geocoder",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(LookupsTotal)
	prometheus.MustRegister(LookupDistanceKm)
	prometheus.MustRegister(DatasetBuildsTotal)
	prometheus.MustRegister(DatasetBuildDurationMs)
	prometheus.MustRegister(DatasetRecords)
	prometheus.MustRegister(GeocoderRequestsTotal)
	prometheus.MustRegister(GeocoderDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
