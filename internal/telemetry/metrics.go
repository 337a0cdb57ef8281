// Package telemetry exposes Prometheus collectors for GitHub calls and snapshot writes.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "team_metrics"

// Outcome labels for GitHub requests.
const (
	OutcomeOK                = "ok"
	OutcomeAcceptedExhausted = "accepted_exhausted"
	OutcomeHTTPError         = "http_error"
	OutcomeNetworkError      = "network_error"
	OutcomeMalformed         = "malformed"
	OutcomeUnauthenticated   = "unauthenticated"
)

// Metrics holds the application collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	githubRequests   *prometheus.CounterVec
	githubRetries    prometheus.Counter
	snapshotsCreated prometheus.Counter
	snapshotsSkipped *prometheus.CounterVec
	batchDuration    prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		githubRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "github",
			Name:      "requests_total",
			Help:      "GitHub API requests by outcome.",
		}, []string{"outcome"}),
		githubRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "github",
			Name:      "accepted_retries_total",
			Help:      "Retries issued after GitHub answered 202 Accepted.",
		}),
		snapshotsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "created_total",
			Help:      "Metric snapshots written.",
		}),
		snapshotsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "skipped_total",
			Help:      "Snapshot attempts that wrote nothing, by reason.",
		}, []string{"reason"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "batch_duration_seconds",
			Help:      "Duration of a full team update.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		}),
	}
	for _, c := range []prometheus.Collector{
		m.githubRequests, m.githubRetries, m.snapshotsCreated, m.snapshotsSkipped, m.batchDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) GitHubRequest(outcome string) {
	if m == nil {
		return
	}
	m.githubRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) GitHubRetry() {
	if m == nil {
		return
	}
	m.githubRetries.Inc()
}

func (m *Metrics) SnapshotCreated() {
	if m == nil {
		return
	}
	m.snapshotsCreated.Inc()
}

func (m *Metrics) SnapshotSkipped(reason string) {
	if m == nil {
		return
	}
	m.snapshotsSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveBatch(seconds float64) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(seconds)
}
