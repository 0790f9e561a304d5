package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "booking"

// Booking holds the booking-flow collectors. A nil *Booking records
// nothing, so components can run without metrics.
type Booking struct {
	sessionsStarted   prometheus.Counter
	submissions       *prometheus.CounterVec
	catalogFailures   *prometheus.CounterVec
	mediaFailures     prometheus.Counter
	staleAvailability prometheus.Counter
}

func New(reg prometheus.Registerer) *Booking {
	m := &Booking{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Booking sessions opened.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Booking confirmations by kind (create, reschedule) and outcome.",
		}, []string{"kind", "outcome"}),
		catalogFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_failures_total",
			Help:      "Catalog loads that degraded to an empty list.",
		}, []string{"resource"}),
		mediaFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_failures_total",
			Help:      "Barber media fetches that failed and were replaced by an empty list.",
		}),
		staleAvailability: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_stale_total",
			Help:      "Availability responses dropped because the selection changed meanwhile.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.sessionsStarted,
			m.submissions,
			m.catalogFailures,
			m.mediaFailures,
			m.staleAvailability,
		)
	}
	return m
}

func (m *Booking) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func (m *Booking) Submission(kind, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(kind, outcome).Inc()
}

func (m *Booking) CatalogFailure(resource string) {
	if m == nil {
		return
	}
	m.catalogFailures.WithLabelValues(resource).Inc()
}

func (m *Booking) MediaFailure() {
	if m == nil {
		return
	}
	m.mediaFailures.Inc()
}

func (m *Booking) StaleAvailability() {
	if m == nil {
		return
	}
	m.staleAvailability.Inc()
}
