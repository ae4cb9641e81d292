package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordRegistrations(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementRecorded(1)
	m.IncrementRecorded(2)
	m.IncrementRejected()
	m.IncrementFieldFailure("email", "field_pattern_mismatch")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RegistrationsRecorded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SubmissionsRejected))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FieldValidationFailed.WithLabelValues("email", "field_pattern_mismatch")))
}

func TestMetricsObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("/registrations", "POST", time.Now().Add(-10*time.Millisecond))

	count, err := testutil.GatherAndCount(reg, "regdesk_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewRegistersOncePerRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
