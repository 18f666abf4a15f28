// Package monitor detects movement between consecutive assessments of the same
// country set.
//
// A change carries the overall delta and its trend, per-pillar deltas, alerts for
// pillars that moved sharply, and high-priority risk factors that were not present
// before. FilterRecentlySent and RecordNotified suppress repeat notifications with the
// same trend inside a cooldown unless the overall risk level changed.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/georisk/internal/logger"
	"github.com/rewired-gh/georisk/internal/models"
)

// Default thresholds.
const (
	DefaultTrendThreshold       = 5.0
	DefaultPillarAlertThreshold = 15.0
)

// History is the storage the monitor reads previous assessments from.
type History interface {
	LatestAssessment(ctx context.Context, countryKey string) (*models.RiskAssessment, error)
	LatestWorldWar(ctx context.Context, countryKey string) (*models.WorldWarAssessment, error)
}

// notifiedRecord tracks a previously sent notification for cooldown deduplication.
type notifiedRecord struct {
	Trend  string
	Level  models.RiskLevel
	SentAt time.Time
}

// Monitor compares assessments and tracks which changes were already notified.
type Monitor struct {
	history              History
	log                  *logger.Logger
	trendThreshold       float64
	pillarAlertThreshold float64
	notified             map[string]notifiedRecord // key = country key
	now                  func() time.Time
}

// New creates a Monitor. A nil logger is replaced by a no-op logger.
func New(history History, log *logger.Logger, trendThreshold, pillarAlertThreshold float64) *Monitor {
	if log == nil {
		log = logger.Nop()
	}
	if trendThreshold <= 0 {
		trendThreshold = DefaultTrendThreshold
	}
	if pillarAlertThreshold <= 0 {
		pillarAlertThreshold = DefaultPillarAlertThreshold
	}
	return &Monitor{
		history:              history,
		log:                  log,
		trendThreshold:       trendThreshold,
		pillarAlertThreshold: pillarAlertThreshold,
		notified:             make(map[string]notifiedRecord),
		now:                  time.Now,
	}
}

// Compare describes the movement from prev to curr. Both must cover the same country set.
func (m *Monitor) Compare(prev, curr *models.RiskAssessment) (*models.RiskChange, error) {
	if prev == nil || curr == nil {
		return nil, fmt.Errorf("%w: both assessments are required", models.ErrInvalidInput)
	}
	if prev.CountryKey() != curr.CountryKey() {
		return nil, fmt.Errorf("%w: cannot compare %s with %s", models.ErrInvalidInput, prev.CountryKey(), curr.CountryKey())
	}

	delta := curr.OverallRisk.Score - prev.OverallRisk.Score
	change := &models.RiskChange{
		ID:             uuid.New().String(),
		CountryKey:     curr.CountryKey(),
		PreviousID:     prev.ID,
		CurrentID:      curr.ID,
		PreviousScore:  prev.OverallRisk.Score,
		CurrentScore:   curr.OverallRisk.Score,
		Change:         delta,
		Trend:          m.Trend(delta),
		PreviousLevel:  prev.OverallRisk.Level,
		CurrentLevel:   curr.OverallRisk.Level,
		PillarChanges:  make(map[models.PillarName]models.PillarChange, len(models.AllPillars)),
		NewRiskFactors: newFactors(prev.RiskFactors.HighPriority, curr.RiskFactors.HighPriority),
		Alerts:         []string{},
		Interval:       curr.Timestamp.Sub(prev.Timestamp),
		DetectedAt:     m.now(),
	}

	for _, name := range models.AllPillars {
		p, okPrev := prev.PillarScores[name]
		c, okCurr := curr.PillarScores[name]
		if !okPrev || !okCurr {
			continue
		}
		d := c.Score - p.Score
		change.PillarChanges[name] = models.PillarChange{Previous: p.Score, Current: c.Score, Change: d}
		if math.Abs(d) > m.pillarAlertThreshold {
			change.Alerts = append(change.Alerts, fmt.Sprintf("Significant change in %s: %+.1f points", name, d))
		}
	}

	return change, nil
}

// Trend labels an overall score delta.
func (m *Monitor) Trend(delta float64) string {
	switch {
	case delta > m.trendThreshold:
		return models.TrendIncreasing
	case delta < -m.trendThreshold:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

// Track compares curr with the latest stored assessment of the same country set.
// Returns nil without error when there is nothing to compare against.
func (m *Monitor) Track(ctx context.Context, curr *models.RiskAssessment) (*models.RiskChange, error) {
	if m.history == nil {
		return nil, errors.New("monitor has no history configured")
	}
	prev, err := m.history.LatestAssessment(ctx, curr.CountryKey())
	if errors.Is(err, models.ErrNotFound) {
		m.log.Debug("Track: no previous assessment for %s", curr.CountryKey())
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load previous assessment: %w", err)
	}
	if prev.ID == curr.ID {
		return nil, nil
	}

	change, err := m.Compare(prev, curr)
	if err != nil {
		return nil, err
	}
	m.log.Info("Track: %s %s %.1f -> %.1f (%+.1f), %d alerts",
		change.CountryKey, change.Trend, change.PreviousScore, change.CurrentScore, change.Change, len(change.Alerts))
	return change, nil
}

// TrackWorldWar reports whether curr is worth notifying against the latest stored
// world-war assessment of the same country set: nothing stored yet, a different
// probability band, or a score move beyond the trend threshold.
func (m *Monitor) TrackWorldWar(ctx context.Context, curr *models.WorldWarAssessment) (bool, error) {
	if m.history == nil {
		return false, errors.New("monitor has no history configured")
	}
	prev, err := m.history.LatestWorldWar(ctx, curr.CountryKey())
	if errors.Is(err, models.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load previous world war assessment: %w", err)
	}
	if prev.ID == curr.ID {
		return false, nil
	}

	delta := curr.WorldWarRiskScore - prev.WorldWarRiskScore
	m.log.Debug("TrackWorldWar: %s %.1f -> %.1f (%s -> %s)",
		curr.CountryKey(), prev.WorldWarRiskScore, curr.WorldWarRiskScore, prev.WorldWarProbability, curr.WorldWarProbability)
	return prev.WorldWarProbability != curr.WorldWarProbability || math.Abs(delta) > m.trendThreshold, nil
}

// Notable reports whether a change is worth notifying: a non-stable trend, a level
// change, a pillar alert or a new high-priority factor.
func Notable(c *models.RiskChange) bool {
	return c.Trend != models.TrendStable || c.LevelChanged() || len(c.Alerts) > 0 || len(c.NewRiskFactors) > 0
}

// FilterRecentlySent removes changes whose country set was notified within cooldown
// with the same trend, unless the overall level moved since. Returns a non-nil slice.
func (m *Monitor) FilterRecentlySent(changes []*models.RiskChange, cooldown time.Duration) []*models.RiskChange {
	now := m.now()
	result := []*models.RiskChange{}
	for _, c := range changes {
		rec, exists := m.notified[c.CountryKey]
		if exists && now.Sub(rec.SentAt) < cooldown {
			sameTrend := rec.Trend == c.Trend
			levelChanged := rec.Level != c.CurrentLevel
			if sameTrend && !levelChanged {
				continue
			}
		}
		result = append(result, c)
	}
	return result
}

// RecordNotified records the given changes as notified now.
// Call this after a successful send to enable cooldown deduplication.
func (m *Monitor) RecordNotified(changes []*models.RiskChange) {
	now := m.now()
	for _, c := range changes {
		m.notified[c.CountryKey] = notifiedRecord{
			Trend:  c.Trend,
			Level:  c.CurrentLevel,
			SentAt: now,
		}
	}
}

func newFactors(prev, curr []string) []string {
	seen := make(map[string]bool, len(prev))
	for _, f := range prev {
		seen[f] = true
	}
	out := []string{}
	for _, f := range curr {
		if !seen[f] {
			out = append(out, f)
		}
	}
	return out
}
