package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parking_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"route", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parking_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Session lifecycle metrics
	SessionsCheckedIn = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_sessions_checked_in_total",
			Help: "Sessions opened",
		},
	)

	SessionsPaid = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_sessions_paid_total",
			Help: "Sessions paid",
		},
	)

	RevenueTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_revenue_total",
			Help: "Revenue recorded through payments",
		},
	)

	SlotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_slot_conflicts_total",
			Help: "Check-ins rejected because the slot was taken",
		},
	)

	UnknownServiceIDs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_unknown_service_ids_total",
			Help: "Selected service ids missing from the rate table",
		},
	)

	// Cache metrics
	RateCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_rate_cache_hits_total",
			Help: "Rate table version cache hits",
		},
	)

	RateCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_rate_cache_misses_total",
			Help: "Rate table version cache misses",
		},
	)

	// Live feed metrics
	LiveClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "parking_live_clients",
			Help: "Connected live feed clients",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		SessionsCheckedIn,
		SessionsPaid,
		RevenueTotal,
		SlotConflicts,
		UnknownServiceIDs,
		RateCacheHits,
		RateCacheMisses,
		LiveClients,
	)
}

// Handler exposes registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
