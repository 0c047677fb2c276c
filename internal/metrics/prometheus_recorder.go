package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once                sync.Once
	opDuration          *prom.HistogramVec
	opResults           *prom.CounterVec
	workingHours        prom.Histogram
	connectionRetries   prom.Counter
	connectionExhausted prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.opDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "timeclock",
			Name:      "op_duration_seconds",
			Help:      "Duration of attendance operations",
			Buckets:   prom.DefBuckets,
		}, []string{"op"})
		pr.opResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "timeclock",
			Name:      "op_results_total",
			Help:      "Attendance operation results by outcome",
		}, []string{"op", "result"})
		pr.workingHours = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "timeclock",
			Name:      "working_hours",
			Help:      "Working hours computed at check-out",
			Buckets:   []float64{1, 2, 4, 6, 8, 10, 12, 16, 24},
		})
		pr.connectionRetries = prom.NewCounter(prom.CounterOpts{
			Namespace: "timeclock",
			Name:      "connection_retries_total",
			Help:      "Total store connection retries (transient failures)",
		})
		pr.connectionExhausted = prom.NewCounter(prom.CounterOpts{
			Namespace: "timeclock",
			Name:      "connection_retry_exhausted_total",
			Help:      "Count of operations where the connection retry budget was exhausted",
		})
		reg.MustRegister(pr.opDuration, pr.opResults, pr.workingHours, pr.connectionRetries, pr.connectionExhausted)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveOpDuration(op string, d time.Duration) {
	if p == nil || p.opDuration == nil {
		return
	}
	p.opDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncOpResult(op string, result ResultLabel) {
	if p == nil || p.opResults == nil {
		return
	}
	p.opResults.WithLabelValues(op, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveWorkingHours(h float64) {
	if p == nil || p.workingHours == nil {
		return
	}
	p.workingHours.Observe(h)
}

func (p *PrometheusRecorder) IncConnectionRetry() {
	if p == nil || p.connectionRetries == nil {
		return
	}
	p.connectionRetries.Inc()
}

func (p *PrometheusRecorder) IncConnectionExhausted() {
	if p == nil || p.connectionExhausted == nil {
		return
	}
	p.connectionExhausted.Inc()
}
