// Package metrics exports association consistency metrics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/devicehub/devicehub/internal/domain/association"
)

const namespace = "devicehub"

// Metrics bundles consistency metrics.
type Metrics struct {
	Violations    *prometheus.GaugeVec
	ChecksTotal   prometheus.Counter
	CheckDuration prometheus.Histogram
	LastCheck     prometheus.Gauge
	RepairsTotal  *prometheus.CounterVec
	SyncTotal     *prometheus.CounterVec
	ProbeFailures *prometheus.CounterVec
}

// New constructs the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Violations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "consistency_violations",
				Help:      "Violations found by the last consistency check, by kind",
			},
			[]string{"kind"},
		),
		ChecksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consistency_checks_total",
			Help:      "Total completed consistency checks",
		}),
		CheckDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "consistency_check_duration_seconds",
			Help:      "Consistency check duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		LastCheck: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "consistency_last_check_timestamp_seconds",
			Help:      "Unix time of the last completed consistency check",
		}),
		RepairsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "consistency_repairs_total",
				Help:      "Repair attempts by violation kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		SyncTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "association_sync_total",
				Help:      "Associate and disassociate operations by result",
			},
			[]string{"action", "result"},
		),
		ProbeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "association_probe_failures_total",
				Help:      "Verification probes that found a partial write",
			},
			[]string{"action"},
		),
	}
	reg.MustRegister(
		m.Violations,
		m.ChecksTotal,
		m.CheckDuration,
		m.LastCheck,
		m.RepairsTotal,
		m.SyncTotal,
		m.ProbeFailures,
	)
	return m
}

// RecordCheck sets the violation gauge for every kind, zeroing kinds absent from the report
func (m *Metrics) RecordCheck(report *association.Report) {
	for kind, n := range report.CountByKind() {
		m.Violations.WithLabelValues(kind.String()).Set(float64(n))
	}
	m.ChecksTotal.Inc()
	m.CheckDuration.Observe(report.Duration.Seconds())
	m.LastCheck.Set(float64(report.CheckedAt.Unix()))
}

func (m *Metrics) RecordRepair(kind association.Kind, outcome association.RepairOutcome) {
	m.RepairsTotal.WithLabelValues(kind.String(), string(outcome)).Inc()
}

func (m *Metrics) RecordSync(action association.Action, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.SyncTotal.WithLabelValues(action.String(), result).Inc()
}

func (m *Metrics) RecordProbeFailure(action association.Action) {
	m.ProbeFailures.WithLabelValues(action.String()).Inc()
}
