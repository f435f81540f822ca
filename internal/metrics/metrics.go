// Package metrics exposes Prometheus counters for the rating engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ratingengine"

// Rejection reasons.
const (
	ReasonInvalid   = "invalid"
	ReasonBackdated = "backdated"
	ReasonStorage   = "storage"
)

type Metrics struct {
	registry *prometheus.Registry

	matchesSubmitted prometheus.Counter
	matchesRejected  *prometheus.CounterVec
	matchesBackdated prometheus.Counter
	ratingDrift      prometheus.Counter
	resets           prometheus.Counter
	replayDuration   prometheus.Histogram
	competitors      prometheus.Gauge
	matches          prometheus.Gauge
}

// New registers every metric on a fresh registry, so several engines (and
// tests) never collide on the global one.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)
	return &Metrics{
		registry: registry,
		matchesSubmitted: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_submitted_total",
			Help:      "Matches accepted into the log.",
		}),
		matchesRejected: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_rejected_total",
			Help:      "Submissions that left the state unchanged, by reason.",
		}, []string{"reason"}),
		matchesBackdated: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_backdated_total",
			Help:      "Accepted matches dated before the latest recorded match.",
		}),
		ratingDrift: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rating_drift_total",
			Help:      "Competitors whose stored rating differed from the replayed one.",
		}),
		resets: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Full resets of ratings and match log.",
		}),
		replayDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "replay_duration_seconds",
			Help:      "Time spent replaying the match log.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		competitors: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "competitors",
			Help:      "Competitors with a rating.",
		}),
		matches: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matches",
			Help:      "Matches in the log.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) MatchSubmitted(backdated bool) {
	m.matchesSubmitted.Inc()
	if backdated {
		m.matchesBackdated.Inc()
	}
}

func (m *Metrics) MatchRejected(reason string) {
	m.matchesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Drift(n int) {
	m.ratingDrift.Add(float64(n))
}

// Cleared counts a full reset of the ratings and the match log.
func (m *Metrics) Cleared() {
	m.resets.Inc()
}

func (m *Metrics) ObserveReplay(d time.Duration) {
	m.replayDuration.Observe(d.Seconds())
}

func (m *Metrics) SetSize(competitors, matches int) {
	m.competitors.Set(float64(competitors))
	m.matches.Set(float64(matches))
}
