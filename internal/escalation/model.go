// Package escalation estimates the risk that a regional conflict widens into a global war.
//
// Five sub-factors (superpower involvement, nuclear escalation, alliance cascade,
// multi-theater strain, economic disruption) are combined with the base regional score:
//
//	raw = base×0.20 + superpower×0.25 + nuclear×0.25 + alliance×0.15 + theater×0.10 + economic×0.05
//
// A chain of compounding multipliers is then applied and the result is capped at 100.
// Country lists are never de-duplicated; a country listed twice counts twice.
package escalation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rewired-gh/georisk/internal/logger"
	"github.com/rewired-gh/georisk/internal/models"
	"github.com/rewired-gh/georisk/internal/reference"
)

var requestValidate = validator.New()

// Defaults used when a request leaves the scores unset.
const (
	DefaultBaseScore       = 75.0
	DefaultEscalationScore = 50.0
)

// SingleTheater stands in for an empty theater list.
const SingleTheater = "Single"

// Sub-factor combination weights.
const (
	weightBase       = 0.20
	weightSuperpower = 0.25
	weightNuclear    = 0.25
	weightAlliance   = 0.15
	weightTheater    = 0.10
	weightEconomic   = 0.05
)

// Multipliers and the sub-score thresholds that trigger them.
const (
	nuclearMultiplier         = 2.0
	superpowerMultiplier      = 1.8
	allianceMultiplier        = 1.6
	nuclearTriggerThreshold   = 80.0
	allianceTriggerThreshold  = 70.0
	superpowerTriggerMinCount = 2
)

// Recorder observes completed world-war assessments.
type Recorder interface {
	ObserveWorldWar(w *models.WorldWarAssessment)
}

// Request is one escalation analysis.
type Request struct {
	Countries []string `validate:"required,min=1,dive,required"`
	Theaters  []string

	// BaseScore is the regional risk score. nil means DefaultBaseScore.
	BaseScore *float64 `validate:"omitempty,gte=0,lte=100"`
	// EscalationScore is blended into the nuclear sub-factor. nil means DefaultEscalationScore.
	EscalationScore *float64 `validate:"omitempty,gte=0,lte=100"`
}

// FromAssessment builds a request whose base score is the assessment's overall score.
func FromAssessment(a *models.RiskAssessment, theaters []string) Request {
	base := a.OverallRisk.Score
	return Request{
		Countries: append([]string(nil), a.Countries...),
		Theaters:  append([]string(nil), theaters...),
		BaseScore: &base,
	}
}

// Model runs escalation analyses against fixed reference tables.
type Model struct {
	tables   reference.Tables
	log      *logger.Logger
	recorder Recorder
	now      func() time.Time
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Model) { m.recorder = r }
}

// New creates a Model. Returns models.ErrConfiguration when the tables are malformed.
func New(tables reference.Tables, opts ...Option) (*Model, error) {
	tables = tables.Clone()
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	m := &Model{tables: tables, log: logger.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.Nop()
	}
	return m, nil
}

// Assess runs the full world-war analysis.
func (m *Model) Assess(req Request) (*models.WorldWarAssessment, error) {
	countries := make([]string, len(req.Countries))
	for i, c := range req.Countries {
		countries[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	req.Countries = countries
	if err := requestValidate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	theaters := req.Theaters
	if len(theaters) == 0 {
		theaters = []string{SingleTheater}
	}
	base := DefaultBaseScore
	if req.BaseScore != nil {
		base = *req.BaseScore
	}
	escalationScore := DefaultEscalationScore
	if req.EscalationScore != nil {
		escalationScore = *req.EscalationScore
	}

	sub := models.SubFactorScores{
		SuperpowerInvolvement: m.SuperpowerInvolvement(countries),
		NuclearEscalation:     m.NuclearEscalation(countries, escalationScore),
		AllianceCascade:       m.AllianceCascade(countries),
		MultiTheater:          MultiTheater(theaters),
		EconomicDisruption:    m.EconomicDisruption(countries),
	}
	breakdown := models.RiskFactorBreakdown{
		BaseRegionalRisk:      base * weightBase,
		SuperpowerInvolvement: sub.SuperpowerInvolvement * weightSuperpower,
		NuclearEscalation:     sub.NuclearEscalation * weightNuclear,
		AllianceCascade:       sub.AllianceCascade * weightAlliance,
		MultiTheater:          sub.MultiTheater * weightTheater,
		EconomicDisruption:    sub.EconomicDisruption * weightEconomic,
	}

	multiplier, triggers := m.Multiplier(countries, sub)
	score := models.ClampScore(breakdown.Sum() * multiplier)
	probability, timeline := Classify(score)

	w := &models.WorldWarAssessment{
		ID:                     uuid.New().String(),
		Countries:              countries,
		Theaters:               append([]string(nil), theaters...),
		Timestamp:              m.now(),
		BaseScore:              base,
		WorldWarRiskScore:      score,
		WorldWarProbability:    probability,
		TimelineToGlobalWar:    timeline,
		Multiplier:             multiplier,
		EscalationFactors:      triggers,
		SubFactors:             sub,
		RiskFactorBreakdown:    breakdown,
		EscalationPathways:     m.Pathways(countries, score),
		CriticalThresholds:     m.CriticalThresholds(countries),
		PreventionStrategies:   m.PreventionStrategies(countries, score),
		EarlyWarningIndicators: EarlyWarningIndicators(),
	}

	m.log.Info("World war assessment for %s: score=%.1f raw=%.2f multiplier=%.2f probability=%s",
		w.CountryKey(), score, breakdown.Sum(), multiplier, probability)

	if m.recorder != nil {
		m.recorder.ObserveWorldWar(w)
	}
	return w, nil
}

// SuperpowerInvolvement is a step function of the superpower count: 0→20, 1→50,
// 2→85, 3 or more→95.
func (m *Model) SuperpowerInvolvement(countries []string) float64 {
	switch n := reference.CountIn(countries, m.tables.Superpowers); {
	case n == 0:
		return 20
	case n == 1:
		return 50
	case n == 2:
		return 85
	default:
		return 95
	}
}

// NuclearEscalation blends 15 points per nuclear state with the escalation score and
// adds dyad bonuses: USA-RUS +20, USA-CHN +15, IND-PAK +10. Returns 10 with no
// nuclear state involved.
func (m *Model) NuclearEscalation(countries []string, escalationScore float64) float64 {
	nuclear := reference.FilterIn(countries, m.tables.NuclearStates)
	if len(nuclear) == 0 {
		return 10
	}

	risk := (float64(len(nuclear))*15 + escalationScore) / 2
	for _, d := range nuclearDyads {
		if reference.Contains(nuclear, d.a) && reference.Contains(nuclear, d.b) {
			risk += d.bonus
		}
	}
	return models.ClampScore(risk)
}

var nuclearDyads = []struct {
	a, b  string
	bonus float64
}{
	{"USA", "RUS", 20},
	{"USA", "CHN", 15},
	{"IND", "PAK", 10},
}

// AllianceCascade scores alliance entanglement. Per alliance, two or more involved
// members add 30 and a single member adds 25 for NATO or 15 otherwise. Any NATO member
// together with any CSTO member adds another 40.
func (m *Model) AllianceCascade(countries []string) float64 {
	risk := 0.0
	for _, a := range m.tables.Alliances {
		switch n := reference.CountIn(countries, a.Members); {
		case n >= 2:
			risk += 30
		case n == 1 && a.Name == reference.AllianceNATO:
			risk += 25
		case n == 1:
			risk += 15
		}
	}

	if reference.AnyIn(countries, m.tables.Alliance(reference.AllianceNATO)) &&
		reference.AnyIn(countries, m.tables.Alliance(reference.AllianceCSTO)) {
		risk += 40
	}
	return models.ClampScore(risk)
}

// MultiTheater is a step function of the theater count: 1→20, 2→50, 3→75, 4 or more→90.
// An empty list counts as one theater.
func MultiTheater(theaters []string) float64 {
	switch len(theaters) {
	case 0, 1:
		return 20
	case 2:
		return 50
	case 3:
		return 75
	default:
		return 90
	}
}

// EconomicDisruption adds 12 per major economy plus the chokepoint bonuses.
func (m *Model) EconomicDisruption(countries []string) float64 {
	risk := float64(reference.CountIn(countries, m.tables.EconomicPowers)) * 12
	for _, cp := range m.tables.Chokepoints {
		if reference.Contains(countries, cp.Country) {
			risk += cp.Bonus
		}
	}
	return models.ClampScore(risk)
}

// Multiplier compounds the escalation triggers and returns them in firing order.
func (m *Model) Multiplier(countries []string, sub models.SubFactorScores) (float64, []string) {
	multiplier := 1.0
	triggers := []string{}

	if sub.NuclearEscalation > nuclearTriggerThreshold {
		multiplier *= nuclearMultiplier
		triggers = append(triggers, models.TriggerNuclearThreshold)
	}
	if reference.CountIn(countries, m.tables.Superpowers) >= superpowerTriggerMinCount {
		multiplier *= superpowerMultiplier
		triggers = append(triggers, models.TriggerMultiSuperpower)
	}
	if sub.AllianceCascade > allianceTriggerThreshold {
		multiplier *= allianceMultiplier
		triggers = append(triggers, models.TriggerAllianceCascade)
	}
	return multiplier, triggers
}

// Classify maps a final score to its probability and timeline bands.
func Classify(score float64) (probability, timeline string) {
	switch {
	case score >= 90:
		return "Extreme (>70%)", "1-4 weeks"
	case score >= 80:
		return "High (40-70%)", "1-6 months"
	case score >= 70:
		return "Moderate (20-40%)", "6-18 months"
	case score >= 60:
		return "Low-Moderate (10-20%)", "1-3 years"
	default:
		return "Low (<10%)", ">3 years"
	}
}
