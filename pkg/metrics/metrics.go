// Package metrics exports reconciliation counters through Prometheus.
//
// Metrics are registered on a caller-supplied registry so several runs, or
// tests, never share global state. The CLI writes the registry to a node
// exporter textfile at the end of a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentstation/tradematch/pkg/dedup"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/match"
)

// Metrics provides observability for reconciliation runs.
type Metrics struct {
	registry *prometheus.Registry

	// Matches produced per key pair.
	KeyPairMatches *prometheus.CounterVec

	// Record counts after each stage, per side.
	StageRecords *prometheus.GaugeVec

	// Records per match outcome.
	Outcomes *prometheus.GaugeVec

	// Deduplication drops and placeholder identities.
	DedupDropped      *prometheus.CounterVec
	DedupPlaceholders *prometheus.CounterVec

	// Stage latency.
	StageDuration *prometheus.HistogramVec

	// Non-fatal warnings such as empty inputs.
	Warnings *prometheus.CounterVec
}

// New registers all tradematch metrics on registry. A nil registry gets a
// fresh one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)
	ctx := []string{"regime", "asset_class"}

	return &Metrics{
		registry: registry,

		KeyPairMatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradematch_key_pair_matches_total",
			Help: "Records matched per key pair",
		}, append(ctx, "key_pair")),

		StageRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tradematch_stage_records",
			Help: "Record count after each pipeline stage",
		}, append(ctx, "stage", "side")), // stage: ingested, keyed, deduplicated

		Outcomes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tradematch_match_outcomes",
			Help: "Records per match outcome",
		}, append(ctx, "outcome")),

		DedupDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradematch_dedup_dropped_total",
			Help: "Duplicate records removed by deduplication",
		}, append(ctx, "side")),

		DedupPlaceholders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradematch_dedup_placeholders_total",
			Help: "Records given a placeholder identity because every candidate was empty",
		}, append(ctx, "side")),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tradematch_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"stage"}),

		Warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradematch_warnings_total",
			Help: "Non-fatal warnings by kind",
		}, append(ctx, "kind")),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observer returns a match observer that counts matches per key pair for one
// business context.
func (m *Metrics) Observer(regime, assetClass string) match.Observer {
	return match.ObserverFunc(func(r match.PassReport) {
		if m != nil {
			m.KeyPairMatches.WithLabelValues(regime, assetClass, r.Pair.Name()).Add(float64(r.Matched))
		}
	})
}

// ObserveStage records the record count of a side after a stage.
func (m *Metrics) ObserveStage(regime, assetClass, stage, side string, records int) {
	if m != nil {
		m.StageRecords.WithLabelValues(regime, assetClass, stage, side).Set(float64(records))
	}
}

// ObserveDedup records deduplication statistics for a side.
func (m *Metrics) ObserveDedup(regime, assetClass, side string, stats dedup.Stats) {
	if m != nil {
		m.DedupDropped.WithLabelValues(regime, assetClass, side).Add(float64(stats.Dropped))
		m.DedupPlaceholders.WithLabelValues(regime, assetClass, side).Add(float64(stats.Placeholders))
	}
}

// ObserveOutcomes records per-outcome counts.
func (m *Metrics) ObserveOutcomes(regime, assetClass string, c match.Counts) {
	if m != nil {
		m.Outcomes.WithLabelValues(regime, assetClass, match.Matched.String()).Set(float64(c.Matched))
		m.Outcomes.WithLabelValues(regime, assetClass, match.LeftOnly.String()).Set(float64(c.LeftOnly))
		m.Outcomes.WithLabelValues(regime, assetClass, match.RightOnly.String()).Set(float64(c.RightOnly))
	}
}

// ObserveDuration records how long a stage took.
func (m *Metrics) ObserveDuration(stage string, d time.Duration) {
	if m != nil {
		m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementWarning counts a non-fatal warning.
func (m *Metrics) IncrementWarning(regime, assetClass, kind string) {
	if m != nil {
		m.Warnings.WithLabelValues(regime, assetClass, kind).Inc()
	}
}

// WriteTextfile writes every metric in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return errors.WrapIO("write", path, prometheus.WriteToTextfile(path, m.registry))
}
