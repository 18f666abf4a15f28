package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// RiskLevel is the discrete band of an overall score.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "Very Low"
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// OverallRisk is the confidence-weighted synthesis of all pillar scores.
type OverallRisk struct {
	Score      float64   `json:"score"`
	Level      RiskLevel `json:"level"`
	Confidence float64   `json:"confidence"`
}

// RiskFactors buckets identified risk conditions by priority. Order is rule order.
type RiskFactors struct {
	HighPriority   []string `json:"high_priority"`
	MediumPriority []string `json:"medium_priority"`
	LowPriority    []string `json:"low_priority"`
}

// Scenario is a qualitative outlook band.
type Scenario struct {
	Probability string `json:"probability"`
	Timeframe   string `json:"timeframe"`
	Description string `json:"description"`
}

// Scenario names produced by the scenario generator.
const (
	ScenarioImmediateConflict = "immediate_conflict"
	ScenarioEscalatingCrisis  = "escalating_crisis"
	ScenarioDiplomaticTension = "diplomatic_tension"
	ScenarioStableCompetition = "stable_competition"
	ScenarioNuclearEscalation = "nuclear_escalation"
)

// DegradedPillar records a pillar whose provider failed and was replaced by the default.
type DegradedPillar struct {
	Pillar PillarName `json:"pillar"`
	Reason string     `json:"reason"`
}

// RiskAssessment is the aggregate root of one analysis call.
type RiskAssessment struct {
	ID              string                     `json:"id"`
	Countries       []string                   `json:"countries"`
	Timestamp       time.Time                  `json:"timestamp"`
	PillarScores    map[PillarName]PillarScore `json:"pillar_scores"`
	OverallRisk     OverallRisk                `json:"overall_risk"`
	RiskFactors     RiskFactors                `json:"risk_factors"`
	Scenarios       map[string]Scenario        `json:"scenarios"`
	Recommendations []string                   `json:"recommendations"`
	Degraded        []DegradedPillar           `json:"degraded,omitempty"`
}

// CountryKey returns the canonical key of the assessed country set.
func (a *RiskAssessment) CountryKey() string {
	return CountryKey(a.Countries)
}

// Validate checks that the assessment is structurally complete
func (a *RiskAssessment) Validate() error {
	if a.ID == "" {
		return errors.New("assessment ID must not be empty")
	}
	if len(a.Countries) == 0 {
		return errors.New("assessment must cover at least one country")
	}
	if err := validateCountries(a.Countries); err != nil {
		return err
	}
	for _, p := range AllPillars {
		ps, ok := a.PillarScores[p]
		if !ok {
			return fmt.Errorf("pillar %s missing from assessment", p)
		}
		if err := ps.Validate(); err != nil {
			return fmt.Errorf("pillar %s: %w", p, err)
		}
	}
	if a.OverallRisk.Score < 0 || a.OverallRisk.Score > 100 {
		return errors.New("overall score must be between 0 and 100")
	}
	if a.OverallRisk.Confidence < 0 || a.OverallRisk.Confidence > 1 {
		return errors.New("overall confidence must be between 0.0 and 1.0")
	}
	if a.Timestamp.After(time.Now()) {
		return errors.New("timestamp must not be in the future")
	}
	return nil
}

func validateCountries(countries []string) error {
	for i, c := range countries {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("country %d must not be blank", i)
		}
	}
	return nil
}

// CountryKey builds an order-independent key from country codes: upper-cased,
// de-duplicated, sorted and comma-joined.
func CountryKey(countries []string) string {
	seen := make(map[string]bool, len(countries))
	keys := make([]string, 0, len(countries))
	for _, c := range countries {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		keys = append(keys, c)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
