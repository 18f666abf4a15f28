// Package models defines the core domain entities for georisk.
// These models represent pillar scores, composite risk assessments, world-war escalation
// assessments and detected risk changes between assessments.
//
// Terminology:
//   - Pillar: one of five independent analytical dimensions (events, narratives,
//     networks, military, escalation) scored 0–100 with a 0–1 confidence.
//   - Assessment: the synthesized result for an ordered set of countries.
package models

import (
	"errors"
	"fmt"
	"math"
)

// PillarName identifies one analytical pillar.
type PillarName string

const (
	PillarEvents     PillarName = "events"
	PillarNarratives PillarName = "narratives"
	PillarNetworks   PillarName = "networks"
	PillarMilitary   PillarName = "military"
	PillarEscalation PillarName = "escalation"
)

// AllPillars lists the pillars in aggregation order.
var AllPillars = []PillarName{
	PillarEvents,
	PillarNarratives,
	PillarNetworks,
	PillarMilitary,
	PillarEscalation,
}

// Valid reports whether p is one of the five known pillars.
func (p PillarName) Valid() bool {
	for _, known := range AllPillars {
		if p == known {
			return true
		}
	}
	return false
}

// Neutral default substituted for missing or failed pillars.
const (
	DefaultPillarScore      = 50.0
	DefaultPillarConfidence = 0.3
)

// MilitaryProfile is the per-country output of the military power index.
type MilitaryProfile struct {
	Country             string  `json:"country"`
	PowerIndex          float64 `json:"military_power_index"`
	PowerClassification string  `json:"power_classification"`
	NuclearStatus       string  `json:"nuclear_status"`
	TechnologyTier      string  `json:"technology_tier"`
}

// PillarMetadata carries the pillar-specific payload. Only the fields relevant to the
// producing pillar are set.
type PillarMetadata struct {
	// events
	Predictions []string `json:"predictions,omitempty"`

	// narratives
	GTI          *float64 `json:"gti_score,omitempty"`
	TensionLevel string   `json:"tension_level,omitempty"`

	// networks
	VulnerabilityScores []float64 `json:"vulnerability_scores,omitempty"`
	SystemicRisk        *float64  `json:"systemic_risk,omitempty"`

	// military
	MilitaryProfiles []MilitaryProfile `json:"military_analyses,omitempty"`

	// escalation
	NuclearCountries    []string `json:"nuclear_countries,omitempty"`
	TotalWarheads       int      `json:"total_nuclear_warheads,omitempty"`
	EscalationRiskLevel string   `json:"escalation_risk_level,omitempty"`

	// Fallback is set when the score is the neutral default rather than provider output.
	Fallback bool `json:"fallback,omitempty"`
}

// Superpowers returns the countries classified as "Superpower" by the military pillar.
func (m PillarMetadata) Superpowers() []string {
	var out []string
	for _, p := range m.MilitaryProfiles {
		if p.PowerClassification == "Superpower" {
			out = append(out, p.Country)
		}
	}
	return out
}

// PillarScore is one pillar's contribution to an assessment.
type PillarScore struct {
	Score      float64        `json:"score"`
	Confidence float64        `json:"confidence"`
	Metadata   PillarMetadata `json:"metadata"`
}

// NeutralPillarScore returns the default {score: 50, confidence: 0.3}.
func NeutralPillarScore() PillarScore {
	return PillarScore{
		Score:      DefaultPillarScore,
		Confidence: DefaultPillarConfidence,
		Metadata:   PillarMetadata{Fallback: true},
	}
}

// Validate checks that score and confidence are finite and within range
func (p *PillarScore) Validate() error {
	if math.IsNaN(p.Score) || math.IsInf(p.Score, 0) {
		return errors.New("score must be a finite number")
	}
	if p.Score < 0 || p.Score > 100 {
		return fmt.Errorf("score %.2f must be between 0 and 100", p.Score)
	}
	if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("confidence %.2f must be between 0.0 and 1.0", p.Confidence)
	}
	return nil
}

// ClampScore limits a score to [0,100]. NaN maps to 0.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
