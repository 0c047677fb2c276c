package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderRegistersAndRecords(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveOpDuration("check_in", 25*time.Millisecond)
	pr.IncOpResult("check_in", ResultSuccess)
	pr.IncOpResult("check_out", ResultError)
	pr.ObserveWorkingHours(8.25)
	pr.IncConnectionRetry()
	pr.IncConnectionRetry()
	pr.IncConnectionExhausted()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	assert.True(t, names["timeclock_op_duration_seconds"])
	assert.True(t, names["timeclock_op_results_total"])
	assert.True(t, names["timeclock_working_hours"])
	assert.True(t, names["timeclock_connection_retries_total"])
	assert.True(t, names["timeclock_connection_retry_exhausted_total"])
}

func TestPrometheusRecorderNilSafety(t *testing.T) {
	var pr *PrometheusRecorder
	// Nil receiver must not panic; components may hold an unset recorder.
	pr.ObserveOpDuration("check_in", time.Second)
	pr.IncOpResult("check_in", ResultSuccess)
	pr.ObserveWorkingHours(1)
	pr.IncConnectionRetry()
	pr.IncConnectionExhausted()
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg)
	h := HTTPHandler(reg)
	require.NotNil(t, h)
}
