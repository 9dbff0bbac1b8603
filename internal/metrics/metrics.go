// Package metrics exposes Prometheus instrumentation for backlink checks.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hamed0406/backlinkmonitor/internal/domain"
	"github.com/hamed0406/backlinkmonitor/internal/probe"
)

const namespace = "backlinks"

type Metrics struct {
	ChecksTotal   *prometheus.CounterVec
	CheckDuration prometheus.Histogram
	LastRunTotal  *prometheus.GaugeVec
	RunsTotal     *prometheus.CounterVec
}

// New registers the metrics on reg, or the default registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Backlink checks by resulting status.",
		}, []string{"status"}),
		CheckDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Time spent fetching and classifying one backlink.",
			Buckets:   prometheus.DefBuckets,
		}),
		LastRunTotal: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_results",
			Help:      "Results of the most recent batch run by status.",
		}, []string{"status"}),
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Batch runs by outcome.",
		}, []string{"outcome"}),
	}
}

// Instrument wraps a checker so every classification is counted and timed.
func (m *Metrics) Instrument(next probe.Checker) probe.Checker {
	return probe.CheckerFunc(func(ctx context.Context, t domain.Target) domain.CheckResult {
		start := time.Now()
		res := next.Check(ctx, t)
		m.CheckDuration.Observe(time.Since(start).Seconds())
		m.ChecksTotal.WithLabelValues(res.Status.String()).Inc()
		return res
	})
}

// ObserveRun records the outcome of a batch run. rs may be nil on failure.
func (m *Metrics) ObserveRun(rs domain.ResultSet, err error) {
	if err != nil {
		m.RunsTotal.WithLabelValues("failure").Inc()
		return
	}
	m.RunsTotal.WithLabelValues("success").Inc()
	counts := rs.Counts()
	for _, st := range domain.AllStatuses() {
		m.LastRunTotal.WithLabelValues(st.String()).Set(float64(counts[st]))
	}
}
