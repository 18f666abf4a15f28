package models

import (
	"errors"
	"math"
	"time"
)

// Trend labels for overall score movement.
const (
	TrendIncreasing = "Increasing"
	TrendDecreasing = "Decreasing"
	TrendStable     = "Stable"
)

// PillarChange is the movement of one pillar between two assessments.
type PillarChange struct {
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Change   float64 `json:"change"`
}

// RiskChange represents the movement between two assessments of the same country set
type RiskChange struct {
	ID             string                      `json:"id"`
	CountryKey     string                      `json:"country_key"`
	PreviousID     string                      `json:"previous_id"`
	CurrentID      string                      `json:"current_id"`
	PreviousScore  float64                     `json:"previous_score"`
	CurrentScore   float64                     `json:"current_score"`
	Change         float64                     `json:"change"`
	Trend          string                      `json:"trend"`
	PreviousLevel  RiskLevel                   `json:"previous_level"`
	CurrentLevel   RiskLevel                   `json:"current_level"`
	PillarChanges  map[PillarName]PillarChange `json:"pillar_changes"`
	NewRiskFactors []string                    `json:"new_risk_factors"`
	Alerts         []string                    `json:"alerts"`
	Interval       time.Duration               `json:"interval"`
	DetectedAt     time.Time                   `json:"detected_at"`
}

// LevelChanged reports whether the overall band moved.
func (c *RiskChange) LevelChanged() bool {
	return c.PreviousLevel != c.CurrentLevel
}

// Validate checks that all change fields are valid
func (c *RiskChange) Validate() error {
	if c.ID == "" {
		return errors.New("change ID must not be empty")
	}
	if c.CountryKey == "" {
		return errors.New("country key must not be empty")
	}
	if math.Abs(c.Change-(c.CurrentScore-c.PreviousScore)) > 0.001 {
		return errors.New("change must equal current_score - previous_score")
	}
	if c.Trend != TrendIncreasing && c.Trend != TrendDecreasing && c.Trend != TrendStable {
		return errors.New("trend must be 'Increasing', 'Decreasing' or 'Stable'")
	}
	if c.DetectedAt.After(time.Now()) {
		return errors.New("detected at must not be in the future")
	}
	return nil
}
