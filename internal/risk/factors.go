package risk

import (
	"fmt"
	"strings"

	"github.com/rewired-gh/georisk/internal/models"
)

// Pillar score thresholds for risk factors.
const (
	highFactorThreshold   = 75.0
	mediumFactorThreshold = 60.0

	criticalTensionGTI = -50.0
	highTensionGTI     = -25.0
)

// IdentifyRiskFactors derives prioritized risk factors from pillar scores and their
// metadata. Rules run in a fixed order and a single pillar may add several entries.
func IdentifyRiskFactors(scores map[models.PillarName]models.PillarScore) models.RiskFactors {
	factors := models.RiskFactors{
		HighPriority:   []string{},
		MediumPriority: []string{},
		LowPriority:    []string{},
	}

	for _, name := range models.AllPillars {
		ps, ok := scores[name]
		if !ok {
			continue
		}
		switch {
		case ps.Score >= highFactorThreshold:
			factors.HighPriority = append(factors.HighPriority,
				fmt.Sprintf("High %s risk (score: %.1f)", name, ps.Score))
		case ps.Score >= mediumFactorThreshold:
			factors.MediumPriority = append(factors.MediumPriority,
				fmt.Sprintf("Elevated %s risk (score: %.1f)", name, ps.Score))
		}
	}

	if esc, ok := scores[models.PillarEscalation]; ok && len(esc.Metadata.NuclearCountries) > 0 {
		factors.HighPriority = append(factors.HighPriority,
			"Nuclear weapons involved: "+strings.Join(esc.Metadata.NuclearCountries, ", "))
	}

	if mil, ok := scores[models.PillarMilitary]; ok {
		if superpowers := mil.Metadata.Superpowers(); len(superpowers) > 0 {
			factors.HighPriority = append(factors.HighPriority,
				"Superpower involvement: "+strings.Join(superpowers, ", "))
		}
	}

	gti := 0.0
	if nar, ok := scores[models.PillarNarratives]; ok && nar.Metadata.GTI != nil {
		gti = *nar.Metadata.GTI
	}
	switch {
	case gti <= criticalTensionGTI:
		factors.HighPriority = append(factors.HighPriority,
			fmt.Sprintf("Critical narrative tension (GTI: %.1f)", gti))
	case gti <= highTensionGTI:
		factors.MediumPriority = append(factors.MediumPriority,
			fmt.Sprintf("High narrative tension (GTI: %.1f)", gti))
	}

	return factors
}

// GenerateScenarios picks the primary outlook band for the overall score and adds the
// nuclear escalation scenario when the escalation pillar scores 60 or more.
func GenerateScenarios(overallScore, escalationScore float64) map[string]models.Scenario {
	scenarios := make(map[string]models.Scenario, 2)

	switch {
	case overallScore >= 80:
		scenarios[models.ScenarioImmediateConflict] = models.Scenario{
			Probability: "High (60-80%)",
			Timeframe:   "1-3 months",
			Description: "High probability of immediate military confrontation",
		}
	case overallScore >= 65:
		scenarios[models.ScenarioEscalatingCrisis] = models.Scenario{
			Probability: "Moderate-High (40-60%)",
			Timeframe:   "3-6 months",
			Description: "Crisis likely to escalate without intervention",
		}
	case overallScore >= 50:
		scenarios[models.ScenarioDiplomaticTension] = models.Scenario{
			Probability: "Moderate (20-40%)",
			Timeframe:   "6-12 months",
			Description: "Sustained diplomatic tensions with risk of escalation",
		}
	default:
		scenarios[models.ScenarioStableCompetition] = models.Scenario{
			Probability: "Low (5-20%)",
			Timeframe:   "12+ months",
			Description: "Competitive but stable relationship",
		}
	}

	if escalationScore >= 60 {
		scenarios[models.ScenarioNuclearEscalation] = models.Scenario{
			Probability: "Low but catastrophic (1-5%)",
			Timeframe:   "During any conflict",
			Description: "Risk of nuclear weapon use if conventional conflict occurs",
		}
	}

	return scenarios
}

var (
	criticalRecommendations = []string{
		"URGENT: Activate crisis management protocols",
		"Establish direct communication channels between leadership",
		"Deploy diplomatic mediation efforts immediately",
		"Prepare humanitarian response capabilities",
	}
	highRecommendations = []string{
		"Increase diplomatic engagement and dialogue",
		"Enhance intelligence monitoring and early warning systems",
		"Prepare contingency plans for various escalation scenarios",
		"Coordinate with allies and international organizations",
	}
	moderateRecommendations = []string{
		"Maintain regular diplomatic contact",
		"Monitor situation closely for changes",
		"Strengthen conflict prevention mechanisms",
		"Address underlying grievances through dialogue",
	}
)

// GenerateRecommendations returns the band recommendations for the score followed by
// one targeted recommendation per matching factor category (nuclear, narrative, network).
func GenerateRecommendations(overallScore float64, factors models.RiskFactors) []string {
	var recs []string
	switch {
	case overallScore >= 80:
		recs = append(recs, criticalRecommendations...)
	case overallScore >= 65:
		recs = append(recs, highRecommendations...)
	case overallScore >= 50:
		recs = append(recs, moderateRecommendations...)
	default:
		recs = []string{}
	}

	if anyContains(factors.HighPriority, "nuclear") {
		recs = append(recs, "Establish nuclear risk reduction measures and hotlines")
	}
	if anyContains(factors.HighPriority, "narrative") {
		recs = append(recs, "Counter inflammatory rhetoric through strategic communication")
	}
	if anyContains(factors.MediumPriority, "network") {
		recs = append(recs, "Strengthen economic interdependencies to raise conflict costs")
	}
	return recs
}

// anyContains reports whether any entry contains substr, ignoring case.
func anyContains(entries []string, substr string) bool {
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e), substr) {
			return true
		}
	}
	return false
}
