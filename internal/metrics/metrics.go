// Package metrics counts assessments in a Prometheus registry.
//
// The process is short-lived, so nothing is served over HTTP. WriteTextfile dumps the
// registry in the text exposition format for the node-exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rewired-gh/georisk/internal/models"
)

const namespace = "georisk"

var scoreBuckets = prometheus.LinearBuckets(10, 10, 10)

// Metrics implements the risk and escalation recorders.
type Metrics struct {
	registry *prometheus.Registry

	assessmentsTotal  *prometheus.CounterVec
	pillarFallbacks   *prometheus.CounterVec
	overallRiskScore  prometheus.Histogram
	worldWarTotal     *prometheus.CounterVec
	worldWarRiskScore prometheus.Histogram
}

// New creates the collectors on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.assessmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assessments_total",
		Help:      "Total number of risk assessments by overall level.",
	}, []string{"level"})

	m.pillarFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pillar_fallbacks_total",
		Help:      "Total number of pillars scored with the neutral default.",
	}, []string{"pillar"})

	m.overallRiskScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "overall_risk_score",
		Help:      "Distribution of overall risk scores.",
		Buckets:   scoreBuckets,
	})

	m.worldWarTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "world_war_assessments_total",
		Help:      "Total number of world-war assessments by probability band.",
	}, []string{"probability"})

	m.worldWarRiskScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "world_war_risk_score",
		Help:      "Distribution of world-war risk scores.",
		Buckets:   scoreBuckets,
	})

	collectors := []prometheus.Collector{
		m.assessmentsTotal,
		m.pillarFallbacks,
		m.overallRiskScore,
		m.worldWarTotal,
		m.worldWarRiskScore,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return m, nil
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveAssessment records a finished risk assessment.
func (m *Metrics) ObserveAssessment(a *models.RiskAssessment) {
	m.assessmentsTotal.WithLabelValues(string(a.OverallRisk.Level)).Inc()
	m.overallRiskScore.Observe(a.OverallRisk.Score)
	for _, name := range models.AllPillars {
		if s, ok := a.PillarScores[name]; ok && s.Metadata.Fallback {
			m.pillarFallbacks.WithLabelValues(string(name)).Inc()
		}
	}
}

// ObserveWorldWar records a finished world-war assessment.
func (m *Metrics) ObserveWorldWar(w *models.WorldWarAssessment) {
	m.worldWarTotal.WithLabelValues(w.WorldWarProbability).Inc()
	m.worldWarRiskScore.Observe(w.WorldWarRiskScore)
}

// WriteTextfile writes the registry to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
