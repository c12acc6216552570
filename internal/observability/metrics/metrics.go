package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	CheckInsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibesrm_checkins_total",
			Help: "Check-in attempts by result.",
		},
		[]string{"result"},
	)

	CheckOutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibesrm_checkouts_total",
			Help: "Check-out attempts by result.",
		},
		[]string{"result"},
	)

	EncouragementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibesrm_encouragements_total",
			Help: "Encouragement attempts by result.",
		},
		[]string{"result"},
	)

	CacheOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibesrm_cache_operations_total",
			Help: "Cache operations by kind and result (hit, miss, ok, error).",
		},
		[]string{"op", "result"},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibesrm_events_published_total",
			Help: "Published notifications by topic and result.",
		},
		[]string{"topic", "result"},
	)

	AuthenticationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibesrm_authentication_attempts_total",
			Help: "Bearer token validations by result.",
		},
		[]string{"result"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		CheckInsTotal,
		CheckOutsTotal,
		EncouragementsTotal,
		CacheOperationsTotal,
		EventsPublishedTotal,
		AuthenticationAttemptsTotal,
	}
}

// MustRegister registers every collector on reg with a constant service label.
// A nil reg means the default registerer.
func MustRegister(serviceName string, reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, reg)
	wrapped.MustRegister(collectors()...)
}
