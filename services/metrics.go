package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records pipeline runs. A nil *Metrics is valid and records nothing.
type Metrics struct {
	runs          *prometheus.CounterVec
	duration      prometheus.Histogram
	leads         prometheus.Gauge
	dropped       prometheus.Counter
	parseFailures prometheus.Counter
}

// NewMetrics creates the pipeline collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leads",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leads",
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent loading, cleaning and aggregating leads.",
			Buckets:   prometheus.DefBuckets,
		}),
		leads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "leads",
			Name:      "dataset_leads",
			Help:      "Leads in the most recent dataset.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leads",
			Name:      "rows_dropped_total",
			Help:      "Rows dropped for lacking timestamp, name and phone.",
		}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leads",
			Name:      "parse_failures_total",
			Help:      "Fields that could not be parsed and were stored as null.",
		}),
	}
	reg.MustRegister(m.runs, m.duration, m.leads, m.dropped, m.parseFailures)
	return m
}

func (m *Metrics) observeRun(outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.duration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeDataset(kept, dropped, parseFailures int) {
	if m == nil {
		return
	}
	m.leads.Set(float64(kept))
	m.dropped.Add(float64(dropped))
	m.parseFailures.Add(float64(parseFailures))
}
