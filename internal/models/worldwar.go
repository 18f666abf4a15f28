package models

import (
	"errors"
	"time"
)

// EscalationPathway is one route from regional conflict to global war.
type EscalationPathway struct {
	Pathway     string `json:"pathway"`
	Description string `json:"description"`
	Probability string `json:"probability"`
	Timeline    string `json:"timeline"`
	Trigger     string `json:"trigger"`
}

// CriticalThreshold is an event that would sharply raise world-war risk.
type CriticalThreshold struct {
	Threshold      string `json:"threshold"`
	Description    string `json:"description"`
	RiskIncrease   string `json:"risk_increase"`
	ProbabilityWW3 string `json:"probability_ww3"`
}

// WarningIndicator is an observable precursor of escalation.
type WarningIndicator struct {
	Category     string `json:"category"`
	Indicator    string `json:"indicator"`
	Timeframe    string `json:"timeframe"`
	Significance string `json:"significance"`
}

// RiskFactorBreakdown holds each sub-factor's weighted contribution to the raw score.
type RiskFactorBreakdown struct {
	BaseRegionalRisk      float64 `json:"base_regional_risk"`
	SuperpowerInvolvement float64 `json:"superpower_involvement"`
	NuclearEscalation     float64 `json:"nuclear_escalation"`
	AllianceCascade       float64 `json:"alliance_cascade"`
	MultiTheater          float64 `json:"multi_theater"`
	EconomicDisruption    float64 `json:"economic_disruption"`
}

// Sum returns the raw score before multipliers.
func (b RiskFactorBreakdown) Sum() float64 {
	return b.BaseRegionalRisk + b.SuperpowerInvolvement + b.NuclearEscalation +
		b.AllianceCascade + b.MultiTheater + b.EconomicDisruption
}

// SubFactorScores are the unweighted sub-factor values, each in [0,100].
type SubFactorScores struct {
	SuperpowerInvolvement float64 `json:"superpower_involvement"`
	NuclearEscalation     float64 `json:"nuclear_escalation"`
	AllianceCascade       float64 `json:"alliance_cascade"`
	MultiTheater          float64 `json:"multi_theater"`
	EconomicDisruption    float64 `json:"economic_disruption"`
}

// Escalation trigger names recorded when a multiplier fires.
const (
	TriggerNuclearThreshold = "Nuclear threshold crossed"
	TriggerMultiSuperpower  = "Multiple superpowers involved"
	TriggerAllianceCascade  = "Alliance cascade activated"
)

// WorldWarAssessment is the second-stage escalation result.
type WorldWarAssessment struct {
	ID                     string              `json:"id"`
	Countries              []string            `json:"countries"`
	Theaters               []string            `json:"conflict_theaters"`
	Timestamp              time.Time           `json:"timestamp"`
	BaseScore              float64             `json:"base_score"`
	WorldWarRiskScore      float64             `json:"world_war_risk_score"`
	WorldWarProbability    string              `json:"world_war_probability"`
	TimelineToGlobalWar    string              `json:"timeline_to_global_war"`
	Multiplier             float64             `json:"multiplier"`
	EscalationFactors      []string            `json:"escalation_factors"`
	SubFactors             SubFactorScores     `json:"sub_factors"`
	RiskFactorBreakdown    RiskFactorBreakdown `json:"risk_factor_breakdown"`
	EscalationPathways     []EscalationPathway `json:"escalation_pathways"`
	CriticalThresholds     []CriticalThreshold `json:"critical_thresholds"`
	PreventionStrategies   []string            `json:"prevention_strategies"`
	EarlyWarningIndicators []WarningIndicator  `json:"early_warning_indicators"`
}

// CountryKey returns the canonical key of the assessed country set.
func (w *WorldWarAssessment) CountryKey() string {
	return CountryKey(w.Countries)
}

// Validate checks that the world-war assessment is within range
func (w *WorldWarAssessment) Validate() error {
	if w.ID == "" {
		return errors.New("world war assessment ID must not be empty")
	}
	if len(w.Countries) == 0 {
		return errors.New("world war assessment must cover at least one country")
	}
	if err := validateCountries(w.Countries); err != nil {
		return err
	}
	if w.WorldWarRiskScore < 0 || w.WorldWarRiskScore > 100 {
		return errors.New("world war risk score must be between 0 and 100")
	}
	if w.WorldWarProbability == "" {
		return errors.New("world war probability must not be empty")
	}
	return nil
}
