package pillars

import (
	"errors"
	"math"

	"github.com/rewired-gh/georisk/internal/models"
)

// Arsenal describes a nuclear-weapon state.
type Arsenal struct {
	Warheads        int
	DeliverySystems []string
}

// CBRN is a country's chemical, biological and nuclear capability labels.
type CBRN struct {
	Chemical   string
	Biological string
	Nuclear    string
}

// Catalog is the lookup data behind the military power index.
type Catalog struct {
	Arsenals         map[string]Arsenal
	CBRN             map[string]CBRN
	TechTiers        map[string][]string // tier name -> countries
	Spending         map[string]float64  // USD billions
	Personnel        map[string]int
	DefaultSpending  float64
	DefaultPersonnel int
}

var capabilityScores = map[string]float64{
	"Advanced":   100,
	"Moderate":   60,
	"Limited":    30,
	"Defensive":  20,
	"Developing": 40,
	"None":       0,
}

var tierScores = map[string]float64{
	"Tier_1": 100,
	"Tier_2": 75,
	"Tier_3": 50,
	"Tier_4": 25,
}

// tierOrder fixes lookup order so a country listed in two tiers resolves deterministically.
var tierOrder = []string{"Tier_1", "Tier_2", "Tier_3"}

// Military power index component weights.
const (
	weightNuclear    = 0.25
	weightCBRN       = 0.15
	weightTechnology = 0.25
	weightSpending   = 0.20
	weightPersonnel  = 0.15
)

// DefaultCatalog returns the built-in 2024 estimates.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Arsenals: map[string]Arsenal{
			"USA": {Warheads: 5550, DeliverySystems: []string{"ICBM", "SLBM", "Strategic_Bomber"}},
			"RUS": {Warheads: 6257, DeliverySystems: []string{"ICBM", "SLBM", "Strategic_Bomber"}},
			"CHN": {Warheads: 350, DeliverySystems: []string{"ICBM", "SLBM", "Strategic_Bomber"}},
			"FRA": {Warheads: 290, DeliverySystems: []string{"SLBM", "Strategic_Bomber"}},
			"GBR": {Warheads: 225, DeliverySystems: []string{"SLBM"}},
			"IND": {Warheads: 164, DeliverySystems: []string{"IRBM", "Aircraft"}},
			"PAK": {Warheads: 170, DeliverySystems: []string{"IRBM", "Aircraft"}},
			"ISR": {Warheads: 90, DeliverySystems: []string{"IRBM", "Aircraft"}},
			"PRK": {Warheads: 30, DeliverySystems: []string{"IRBM"}},
		},
		CBRN: map[string]CBRN{
			"USA": {Chemical: "Defensive", Biological: "Defensive", Nuclear: "Advanced"},
			"RUS": {Chemical: "Advanced", Biological: "Advanced", Nuclear: "Advanced"},
			"CHN": {Chemical: "Advanced", Biological: "Moderate", Nuclear: "Advanced"},
			"IRN": {Chemical: "Moderate", Biological: "Limited", Nuclear: "Developing"},
			"SYR": {Chemical: "Moderate", Biological: "Limited", Nuclear: "None"},
			"PRK": {Chemical: "Advanced", Biological: "Moderate", Nuclear: "Limited"},
		},
		TechTiers: map[string][]string{
			"Tier_1": {"USA", "RUS", "CHN", "GBR", "FRA", "ISR"},
			"Tier_2": {"DEU", "JPN", "IND", "KOR", "ITA", "AUS", "CAN"},
			"Tier_3": {"TUR", "BRA", "IRN", "SAU", "EGY", "PAK", "IDN"},
		},
		Spending: map[string]float64{
			"USA": 816.0, "CHN": 296.0, "RUS": 109.0, "IND": 76.6, "SAU": 75.0,
			"GBR": 68.4, "DEU": 56.0, "UKR": 44.0, "FRA": 43.9, "JPN": 42.0,
			"KOR": 31.4, "ITA": 28.9, "AUS": 27.5, "ISR": 27.5, "CAN": 22.8,
			"TUR": 17.5, "BRA": 16.7, "IRN": 15.8, "NLD": 15.6, "POL": 15.2,
		},
		Personnel: map[string]int{
			"CHN": 2035000, "IND": 1455550, "USA": 1328000, "PRK": 1280000, "RUS": 1014000,
			"PAK": 654000, "IRN": 610000, "KOR": 599000, "VNM": 482000, "EGY": 438500,
			"TUR": 425000, "IDN": 400000, "UKR": 250000, "BRA": 334500, "THA": 360850,
			"JPN": 247150, "SAU": 227000, "FRA": 203250, "DEU": 183500, "GBR": 153290,
			"ITA": 165500, "ISR": 169500, "POL": 114050, "AUS": 58206, "CAN": 67492,
		},
		DefaultSpending:  1.0,
		DefaultPersonnel: 50000,
	}
}

// NuclearScore returns the nuclear capability score: the mean of a log-scaled warhead
// score and 20 points per delivery system. Non-nuclear countries score 0.
func (c *Catalog) NuclearScore(country string) float64 {
	a, ok := c.Arsenals[country]
	if !ok {
		return 0
	}
	warheadScore := math.Min(100, math.Log1p(float64(a.Warheads))*10)
	deliveryScore := float64(len(a.DeliverySystems)) * 20
	return (warheadScore + deliveryScore) / 2
}

// CBRNScore weights chemical 0.3, biological 0.2 and nuclear 0.5.
func (c *Catalog) CBRNScore(country string) float64 {
	labels, ok := c.CBRN[country]
	if !ok {
		return 0
	}
	return capabilityScores[labels.Chemical]*0.3 +
		capabilityScores[labels.Biological]*0.2 +
		capabilityScores[labels.Nuclear]*0.5
}

// TechnologyTier returns the tier name and score, defaulting to Tier_4.
func (c *Catalog) TechnologyTier(country string) (string, float64) {
	for _, tier := range tierOrder {
		for _, member := range c.TechTiers[tier] {
			if member == country {
				return tier, tierScores[tier]
			}
		}
	}
	return "Tier_4", tierScores["Tier_4"]
}

// PowerIndex computes the military power profile for one country.
func (c *Catalog) PowerIndex(country string) models.MilitaryProfile {
	spending, ok := c.Spending[country]
	if !ok {
		spending = c.DefaultSpending
	}
	personnel, ok := c.Personnel[country]
	if !ok {
		personnel = c.DefaultPersonnel
	}

	spendingScore := 0.0
	if spending > 0 {
		spendingScore = math.Min(100, math.Log1p(spending)*15)
	}
	personnelScore := 0.0
	if personnel > 0 {
		personnelScore = math.Min(100, math.Log1p(float64(personnel))*8)
	}
	tier, techScore := c.TechnologyTier(country)

	index := c.NuclearScore(country)*weightNuclear +
		c.CBRNScore(country)*weightCBRN +
		techScore*weightTechnology +
		spendingScore*weightSpending +
		personnelScore*weightPersonnel

	status := "Non-nuclear"
	if _, nuclear := c.Arsenals[country]; nuclear {
		status = "Nuclear-armed"
	}

	return models.MilitaryProfile{
		Country:             country,
		PowerIndex:          index,
		PowerClassification: PowerClassification(index),
		NuclearStatus:       status,
		TechnologyTier:      tier,
	}
}

// PowerClassification bands a power index.
func PowerClassification(index float64) string {
	switch {
	case index >= 85:
		return "Superpower"
	case index >= 70:
		return "Great Power"
	case index >= 55:
		return "Regional Power"
	case index >= 40:
		return "Middle Power"
	default:
		return "Small Power"
	}
}

const (
	militaryConfidence   = 0.9
	escalationConfidence = 0.8
)

type military struct {
	catalog *Catalog
}

// Military returns the military-balance pillar provider.
func Military(catalog *Catalog) Provider {
	return military{catalog: catalog}
}

func (m military) Pillar() models.PillarName { return models.PillarMilitary }

// Score is index/2 for a single country. For several countries it grows with the
// spread of power indices and the strongest party: min(100, var/100 + max/2).
func (m military) Score(countries []string) Result {
	if m.catalog == nil {
		return Fail(errors.New("military catalog not loaded"))
	}
	if len(countries) == 0 {
		return Fail(errors.New("no countries"))
	}

	profiles := make([]models.MilitaryProfile, 0, len(countries))
	indices := make([]float64, 0, len(countries))
	for _, c := range countries {
		p := m.catalog.PowerIndex(c)
		profiles = append(profiles, p)
		indices = append(indices, p.PowerIndex)
	}

	var score float64
	if len(indices) >= 2 {
		score = math.Min(100, variance(indices)/100+maxOf(indices)/2)
	} else {
		score = indices[0] / 2
	}

	return Ok(models.PillarScore{
		Score:      score,
		Confidence: militaryConfidence,
		Metadata:   models.PillarMetadata{MilitaryProfiles: profiles},
	})
}

type escalation struct {
	catalog *Catalog
}

// Escalation returns the escalation-potential pillar provider.
func Escalation(catalog *Catalog) Provider {
	return escalation{catalog: catalog}
}

func (e escalation) Pillar() models.PillarName { return models.PillarEscalation }

// Score adds 40 when any nuclear state is involved, 30 for a superpower-class country,
// 20 for more than one nuclear state and 10 when aggregate power exceeds 200.
func (e escalation) Score(countries []string) Result {
	if e.catalog == nil {
		return Fail(errors.New("military catalog not loaded"))
	}
	if len(countries) == 0 {
		return Fail(errors.New("no countries"))
	}

	var nuclear []string
	totalPower, maxPower := 0.0, 0.0
	warheads := 0
	for _, c := range countries {
		p := e.catalog.PowerIndex(c)
		totalPower += p.PowerIndex
		maxPower = math.Max(maxPower, p.PowerIndex)
		if a, ok := e.catalog.Arsenals[c]; ok {
			nuclear = append(nuclear, c)
			warheads += a.Warheads
		}
	}

	score := 0.0
	if len(nuclear) > 0 {
		score += 40
	}
	if maxPower >= 85 {
		score += 30
	}
	if len(nuclear) > 1 {
		score += 20
	}
	if totalPower > 200 {
		score += 10
	}

	return Ok(models.PillarScore{
		Score:      score,
		Confidence: escalationConfidence,
		Metadata: models.PillarMetadata{
			NuclearCountries:    nuclear,
			TotalWarheads:       warheads,
			EscalationRiskLevel: escalationLevel(score),
		},
	})
}

func escalationLevel(score float64) string {
	switch {
	case score >= 80:
		return "Extreme"
	case score >= 60:
		return "High"
	case score >= 40:
		return "Moderate"
	case score >= 20:
		return "Low"
	default:
		return "Minimal"
	}
}

// variance is the population variance.
func variance(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	v := 0.0
	for _, x := range xs {
		d := x - mean
		v += d * d
	}
	return v / float64(len(xs))
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
