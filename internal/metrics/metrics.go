package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Check-in outcomes recorded on CheckIns.
const (
	OutcomeAccepted  = "accepted"
	OutcomeTooFar    = "too_far"
	OutcomeDuplicate = "duplicate"
)

// Rating targets recorded on Ratings.
const (
	TargetLocation = "location"
	TargetEvent    = "event"
)

type Metrics struct {
	CheckIns       *prometheus.CounterVec
	Ratings        *prometheus.CounterVec
	EventsCreated  prometheus.Counter
	RequestSeconds *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CheckIns: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "spotfinder_checkins_total",
			Help: "Event check-in attempts by outcome.",
		}, []string{"outcome"}),
		Ratings: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "spotfinder_ratings_total",
			Help: "Accepted ratings by target kind.",
		}, []string{"target"}),
		EventsCreated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "spotfinder_events_created_total",
			Help: "Events created through the API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spotfinder_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
