// Package pillars provides the per-pillar score providers consumed by the risk calculator.
//
// A Provider never panics or aborts an assessment: it returns a Result whose Err is set
// when no usable score could be produced. The calculator substitutes the neutral default
// for failed results and keeps going.
package pillars

import (
	"errors"
	"fmt"
	"math"

	"github.com/rewired-gh/georisk/internal/models"
)

// Provider produces one pillar's score for a set of countries.
type Provider interface {
	Pillar() models.PillarName
	Score(countries []string) Result
}

// Result is either a usable PillarScore or a failure.
type Result struct {
	Score models.PillarScore
	Err   error
}

// Ok wraps a successful score.
func Ok(score models.PillarScore) Result {
	return Result{Score: score}
}

// Fail wraps a provider failure.
func Fail(err error) Result {
	return Result{Err: err}
}

// Failed reports whether the result carries an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc struct {
	Name models.PillarName
	Fn   func(countries []string) Result
}

// Pillar implements Provider.
func (p ProviderFunc) Pillar() models.PillarName { return p.Name }

// Score implements Provider.
func (p ProviderFunc) Score(countries []string) Result { return p.Fn(countries) }

// static returns a fixed, caller-supplied score.
type static struct {
	pillar models.PillarName
	score  models.PillarScore
}

// Static returns a Provider that always yields the given score and confidence.
func Static(pillar models.PillarName, score, confidence float64) Provider {
	return Fixed(pillar, models.PillarScore{Score: score, Confidence: confidence})
}

// Fixed returns a Provider that always yields score, metadata included.
func Fixed(pillar models.PillarName, score models.PillarScore) Provider {
	return static{pillar: pillar, score: score}
}

func (s static) Pillar() models.PillarName { return s.pillar }

func (s static) Score([]string) Result {
	if err := s.score.Validate(); err != nil {
		return Fail(err)
	}
	return Ok(s.score)
}

// eventLevelScores maps predicted risk-level labels to scores.
var eventLevelScores = map[string]float64{
	"Low":      25,
	"Medium":   50,
	"High":     75,
	"Critical": 100,
}

const eventConfidence = 0.8

type eventLevels struct {
	levels []string
}

// EventLevels turns predicted event risk levels (one per recent observation) into the
// events pillar. Unknown labels count as 50.
func EventLevels(levels []string) Provider {
	return eventLevels{levels: append([]string(nil), levels...)}
}

func (e eventLevels) Pillar() models.PillarName { return models.PillarEvents }

func (e eventLevels) Score([]string) Result {
	if len(e.levels) == 0 {
		return Fail(errors.New("no event predictions"))
	}
	sum := 0.0
	for _, level := range e.levels {
		score, ok := eventLevelScores[level]
		if !ok {
			score = 50
		}
		sum += score
	}
	return Ok(models.PillarScore{
		Score:      sum / float64(len(e.levels)),
		Confidence: eventConfidence,
		Metadata:   models.PillarMetadata{Predictions: append([]string(nil), e.levels...)},
	})
}

type narrative struct {
	gti        float64
	confidence float64
}

// Narrative converts a Geopolitical Tension Index reading into the narratives pillar.
// A more negative GTI means more hostile rhetoric and a higher risk score.
func Narrative(gti, confidence float64) Provider {
	return narrative{gti: gti, confidence: confidence}
}

func (n narrative) Pillar() models.PillarName { return models.PillarNarratives }

func (n narrative) Score([]string) Result {
	if math.IsNaN(n.gti) || n.gti < -100 || n.gti > 100 {
		return Fail(fmt.Errorf("GTI %.2f outside [-100, 100]", n.gti))
	}
	if math.IsNaN(n.confidence) || n.confidence < 0 || n.confidence > 1 {
		return Fail(fmt.Errorf("narrative confidence %.2f outside [0, 1]", n.confidence))
	}
	gti := n.gti
	return Ok(models.PillarScore{
		Score:      GTIToRisk(gti),
		Confidence: n.confidence,
		Metadata: models.PillarMetadata{
			GTI:          &gti,
			TensionLevel: TensionLevel(gti),
		},
	})
}

// GTIToRisk maps GTI in [-100,100] to a risk score: 50 - gti/2, clamped to [0,100].
func GTIToRisk(gti float64) float64 {
	return models.ClampScore(50 - gti/2)
}

// TensionLevel describes a GTI reading.
func TensionLevel(gti float64) string {
	switch {
	case gti <= -50:
		return "Critical"
	case gti <= -25:
		return "High"
	case gti < 0:
		return "Elevated"
	case gti <= 25:
		return "Moderate"
	default:
		return "Low"
	}
}

const networkConfidence = 0.7

const maxSystemicRisk = 2.0

type network struct {
	vulnerabilities []float64
	systemicRisk    float64
}

// Network builds the networks pillar from per-country vulnerability scores (0–1) and the
// systemic risk of a simulated conflict (0–2).
func Network(vulnerabilities []float64, systemicRisk float64) Provider {
	return network{vulnerabilities: append([]float64(nil), vulnerabilities...), systemicRisk: systemicRisk}
}

func (n network) Pillar() models.PillarName { return models.PillarNetworks }

func (n network) Score([]string) Result {
	if len(n.vulnerabilities) == 0 {
		return Fail(errors.New("no vulnerability scores"))
	}
	sum := 0.0
	for _, v := range n.vulnerabilities {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return Fail(fmt.Errorf("vulnerability %.2f outside [0, 1]", v))
		}
		sum += v
	}
	if math.IsNaN(n.systemicRisk) || n.systemicRisk < 0 || n.systemicRisk > maxSystemicRisk {
		return Fail(fmt.Errorf("systemic risk %.2f outside [0, %.0f]", n.systemicRisk, maxSystemicRisk))
	}
	vulnerabilityRisk := sum / float64(len(n.vulnerabilities)) * 100
	systemic := n.systemicRisk * 50
	sys := systemic

	return Ok(models.PillarScore{
		Score:      models.ClampScore((vulnerabilityRisk + systemic) / 2),
		Confidence: networkConfidence,
		Metadata: models.PillarMetadata{
			VulnerabilityScores: append([]float64(nil), n.vulnerabilities...),
			SystemicRisk:        &sys,
		},
	})
}
