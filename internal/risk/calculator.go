// Package risk synthesizes pillar scores into a composite geopolitical risk assessment.
//
// The overall score is a confidence-weighted mean:
//
//	score = Σ(score × weight × confidence) / Σ(weight × confidence)
//
// Pillars without data are filled with the neutral default (50, confidence 0.3) so the
// denominator is always defined. A provider that fails is absorbed the same way and
// recorded on the assessment as degraded; it never fails the whole call.
package risk

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rewired-gh/georisk/internal/logger"
	"github.com/rewired-gh/georisk/internal/models"
	"github.com/rewired-gh/georisk/internal/pillars"
	"github.com/rewired-gh/georisk/internal/reference"
)

var requestValidate = validator.New()

// Recorder observes completed assessments. internal/metrics implements it.
type Recorder interface {
	ObserveAssessment(a *models.RiskAssessment)
}

// Request is one assessment call.
type Request struct {
	Countries []string `validate:"required,min=1,dive,required"`

	// Scores are caller-supplied pillar scores, metadata included.
	Scores map[models.PillarName]models.PillarScore

	// Providers override the calculator's default providers for the same pillar.
	// A provider listed later wins.
	Providers []pillars.Provider
}

// Calculator produces RiskAssessments. It holds no per-call state and is safe for
// concurrent use.
type Calculator struct {
	tables    reference.Tables
	neutral   models.PillarScore
	providers []pillars.Provider
	log       *logger.Logger
	recorder  Recorder
	now       func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Calculator) { c.log = l }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Calculator) { c.recorder = r }
}

// WithProviders replaces the default providers. Passing none disables them.
func WithProviders(providers ...pillars.Provider) Option {
	return func(c *Calculator) { c.providers = append([]pillars.Provider(nil), providers...) }
}

// WithNeutralScore overrides the default substituted for missing pillars.
func WithNeutralScore(score, confidence float64) Option {
	return func(c *Calculator) {
		c.neutral.Score = score
		c.neutral.Confidence = confidence
	}
}

// New creates a Calculator. The military and escalation providers run by default.
// Returns models.ErrConfiguration when the tables are malformed.
func New(tables reference.Tables, opts ...Option) (*Calculator, error) {
	tables = tables.Clone()
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	catalog := pillars.DefaultCatalog()
	c := &Calculator{
		tables:    tables,
		neutral:   models.NeutralPillarScore(),
		providers: []pillars.Provider{pillars.Military(catalog), pillars.Escalation(catalog)},
		log:       logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	if err := c.neutral.Validate(); err != nil {
		return nil, fmt.Errorf("%w: neutral pillar score: %v", models.ErrConfiguration, err)
	}
	return c, nil
}

// Tables returns a copy of the reference tables the calculator runs on.
func (c *Calculator) Tables() reference.Tables {
	return c.tables.Clone()
}

// Assess runs every pillar, aggregates and derives factors, scenarios and
// recommendations. Returns models.ErrInvalidInput for an empty country list or an
// unknown pillar name. Pillar failures never produce an error.
func (c *Calculator) Assess(req Request) (*models.RiskAssessment, error) {
	req.Countries = normalizeCountries(req.Countries)
	if err := requestValidate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	countries := req.Countries

	resolved := make(map[models.PillarName]pillars.Provider, len(models.AllPillars))
	for _, p := range c.providers {
		resolved[p.Pillar()] = p
	}
	for name, score := range req.Scores {
		if !name.Valid() {
			return nil, fmt.Errorf("%w: unknown pillar %q", models.ErrInvalidInput, name)
		}
		resolved[name] = pillars.Fixed(name, score)
	}
	for _, p := range req.Providers {
		if !p.Pillar().Valid() {
			return nil, fmt.Errorf("%w: unknown pillar %q", models.ErrInvalidInput, p.Pillar())
		}
		resolved[p.Pillar()] = p
	}

	scores := make(map[models.PillarName]models.PillarScore, len(models.AllPillars))
	var degraded []models.DegradedPillar
	for _, name := range models.AllPillars {
		provider, ok := resolved[name]
		if !ok {
			c.log.Debug("No data for pillar %s, using default %.1f/%.2f", name, c.neutral.Score, c.neutral.Confidence)
			scores[name] = c.neutralScore()
			continue
		}

		res := provider.Score(countries)
		err := res.Score.Validate()
		if res.Failed() {
			err = res.Err
		}
		if err != nil {
			perr := models.PillarError{Pillar: name, Err: err}
			c.log.Warn("%v, substituting default score", perr)
			degraded = append(degraded, models.DegradedPillar{Pillar: name, Reason: err.Error()})
			scores[name] = c.neutralScore()
			continue
		}
		scores[name] = res.Score
	}

	overall := WeightedRisk(scores, c.tables.Weights)
	factors := IdentifyRiskFactors(scores)

	assessment := &models.RiskAssessment{
		ID:              uuid.New().String(),
		Countries:       countries,
		Timestamp:       c.now(),
		PillarScores:    scores,
		OverallRisk:     overall,
		RiskFactors:     factors,
		Scenarios:       GenerateScenarios(overall.Score, scores[models.PillarEscalation].Score),
		Recommendations: GenerateRecommendations(overall.Score, factors),
		Degraded:        degraded,
	}

	c.log.Info("Assessed %s: score=%.1f level=%s confidence=%.2f degraded=%d",
		assessment.CountryKey(), overall.Score, overall.Level, overall.Confidence, len(degraded))

	if c.recorder != nil {
		c.recorder.ObserveAssessment(assessment)
	}
	return assessment, nil
}

func (c *Calculator) neutralScore() models.PillarScore {
	return models.PillarScore{
		Score:      c.neutral.Score,
		Confidence: c.neutral.Confidence,
		Metadata:   models.PillarMetadata{Fallback: true},
	}
}

// normalizeCountries upper-cases and trims codes, keeping order and duplicates.
func normalizeCountries(countries []string) []string {
	out := make([]string, len(countries))
	for i, c := range countries {
		out[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	return out
}

// WeightedRisk computes the confidence-weighted mean of the given pillar scores.
// Pillars are visited in fixed order so repeated calls are bit-identical. Confidence is
// the unweighted mean of the contributing pillars. With no usable weight the score is 50.
func WeightedRisk(scores map[models.PillarName]models.PillarScore, weights map[models.PillarName]float64) models.OverallRisk {
	var weightedSum, normalizer, confSum float64
	contributing := 0
	for _, name := range models.AllPillars {
		ps, ok := scores[name]
		if !ok {
			continue
		}
		w := weights[name]
		weightedSum += ps.Score * w * ps.Confidence
		normalizer += w * ps.Confidence
		confSum += ps.Confidence
		contributing++
	}

	score := models.DefaultPillarScore
	if normalizer > 0 {
		score = models.ClampScore(weightedSum / normalizer)
	}
	confidence := 0.0
	if contributing > 0 {
		confidence = confSum / float64(contributing)
	}
	return models.OverallRisk{
		Score:      score,
		Level:      ClassifyLevel(score),
		Confidence: confidence,
	}
}

// ClassifyLevel maps a score to its band. Lower bounds are inclusive.
func ClassifyLevel(score float64) models.RiskLevel {
	switch {
	case score >= 80:
		return models.RiskCritical
	case score >= 65:
		return models.RiskHigh
	case score >= 50:
		return models.RiskModerate
	case score >= 35:
		return models.RiskLow
	default:
		return models.RiskVeryLow
	}
}
