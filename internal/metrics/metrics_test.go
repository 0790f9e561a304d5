package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SessionStarted()
	m.SessionStarted()
	m.Submission("create", "success")
	m.Submission("reschedule", "failure")
	m.CatalogFailure("barbers")
	m.MediaFailure()
	m.StaleAvailability()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("reschedule", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.catalogFailures.WithLabelValues("barbers")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mediaFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.staleAvailability))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilBookingIsNoop(t *testing.T) {
	var m *Booking

	assert.NotPanics(t, func() {
		m.SessionStarted()
		m.Submission("create", "success")
		m.CatalogFailure("services")
		m.MediaFailure()
		m.StaleAvailability()
	})
}
