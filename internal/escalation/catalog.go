package escalation

import (
	"github.com/rewired-gh/georisk/internal/models"
	"github.com/rewired-gh/georisk/internal/reference"
)

// Pathways lists the routes to global war open for this country set. Probability
// labels depend on the final score.
func (m *Model) Pathways(countries []string, score float64) []models.EscalationPathway {
	pathways := []models.EscalationPathway{}

	if m.involvesNuclear(countries) {
		pathways = append(pathways, models.EscalationPathway{
			Pathway:     "Nuclear Escalation",
			Description: "Tactical nuclear use leads to strategic exchange",
			Probability: label(score > 80, "High", "Moderate"),
			Timeline:    "1-7 days",
			Trigger:     "First nuclear weapon use in conflict",
		})
	}

	if reference.AnyIn(countries, m.tables.Alliance(reference.AllianceNATO)) {
		pathways = append(pathways, models.EscalationPathway{
			Pathway:     "NATO Article 5 Cascade",
			Description: "Attack on NATO member triggers collective defense",
			Probability: label(score > 75, "High", "Moderate"),
			Timeline:    "1-4 weeks",
			Trigger:     "Direct attack on NATO territory",
		})
	}

	if reference.CountIn(countries, m.tables.Superpowers) >= superpowerTriggerMinCount {
		pathways = append(pathways, models.EscalationPathway{
			Pathway:     "Superpower Direct Confrontation",
			Description: "Military clash between major powers",
			Probability: label(score > 85, "Very High", "High"),
			Timeline:    "2-8 weeks",
			Trigger:     "Direct military engagement between superpowers",
		})
	}

	if reference.Contains(countries, "USA") && reference.Contains(countries, "CHN") {
		pathways = append(pathways, models.EscalationPathway{
			Pathway:     "Economic Warfare Escalation",
			Description: "Trade war escalates to military conflict",
			Probability: label(score > 70, "Moderate", "Low"),
			Timeline:    "6-18 months",
			Trigger:     "Complete economic decoupling and sanctions",
		})
	}

	return pathways
}

// CriticalThresholds lists the events that would push the situation over the edge.
// The last two entries are always present.
func (m *Model) CriticalThresholds(countries []string) []models.CriticalThreshold {
	var thresholds []models.CriticalThreshold

	if m.involvesNuclear(countries) {
		thresholds = append(thresholds, models.CriticalThreshold{
			Threshold:      "Nuclear Weapon Use",
			Description:    "Any nuclear weapon detonation in anger",
			RiskIncrease:   "+30-50 points",
			ProbabilityWW3: ">90%",
		})
	}

	if reference.AnyIn(countries, m.tables.Alliance(reference.AllianceNATO)) {
		thresholds = append(thresholds, models.CriticalThreshold{
			Threshold:      "NATO Article 5 Invocation",
			Description:    "Collective defense clause activated",
			RiskIncrease:   "+25-40 points",
			ProbabilityWW3: "70-90%",
		})
	}

	return append(thresholds,
		models.CriticalThreshold{
			Threshold:      "Capital City Attack",
			Description:    "Direct attack on major power capital",
			RiskIncrease:   "+20-35 points",
			ProbabilityWW3: "60-80%",
		},
		models.CriticalThreshold{
			Threshold:      "Global Infrastructure Collapse",
			Description:    "Internet, GPS, or financial system disruption",
			RiskIncrease:   "+15-25 points",
			ProbabilityWW3: "40-60%",
		},
	)
}

var (
	urgentStrategies = []string{
		"URGENT: Establish direct leader-to-leader communication channels",
		"Deploy immediate international mediation efforts",
		"Activate all available de-escalation mechanisms",
		"Implement emergency economic stabilization measures",
	}
	superpowerStrategies = []string{
		"Maintain nuclear hotlines and communication protocols",
		"Avoid military exercises near conflict zones",
		"Establish clear rules of engagement to prevent accidents",
	}
	natoStrategies = []string{
		"Clarify Article 5 thresholds and responses",
		"Coordinate alliance response to avoid escalation",
		"Maintain unity while avoiding provocative actions",
	}
	genericStrategies = []string{
		"Strengthen international institutions and mediation capacity",
		"Maintain economic interdependencies where possible",
		"Invest in early warning systems and crisis management",
		"Prepare humanitarian response capabilities",
		"Establish cyber warfare norms and agreements",
	}
)

// PreventionStrategies returns conditional strategies followed by the generic catalog.
func (m *Model) PreventionStrategies(countries []string, score float64) []string {
	var strategies []string
	if score > 80 {
		strategies = append(strategies, urgentStrategies...)
	}
	if m.involvesSuperpower(countries) {
		strategies = append(strategies, superpowerStrategies...)
	}
	if reference.AnyIn(countries, m.tables.Alliance(reference.AllianceNATO)) {
		strategies = append(strategies, natoStrategies...)
	}
	return append(strategies, genericStrategies...)
}

var earlyWarningIndicators = []models.WarningIndicator{
	{Category: "Military", Indicator: "Nuclear forces placed on highest alert", Timeframe: "Hours to days", Significance: "Extreme"},
	{Category: "Military", Indicator: "Mass military mobilization and conscription", Timeframe: "Days to weeks", Significance: "High"},
	{Category: "Military", Indicator: "Alliance collective defense activation", Timeframe: "Days to weeks", Significance: "Critical"},
	{Category: "Economic", Indicator: "Global financial market collapse", Timeframe: "Hours to days", Significance: "High"},
	{Category: "Economic", Indicator: "Critical supply chain breakdown", Timeframe: "Days to weeks", Significance: "High"},
	{Category: "Diplomatic", Indicator: "UN Security Council complete paralysis", Timeframe: "Days to weeks", Significance: "High"},
	{Category: "Diplomatic", Indicator: "Mass embassy evacuations", Timeframe: "Days to weeks", Significance: "High"},
	{Category: "Information", Indicator: "Global internet infrastructure attacks", Timeframe: "Hours", Significance: "Extreme"},
	{Category: "Information", Indicator: "State media preparing for total war", Timeframe: "Weeks", Significance: "High"},
}

// EarlyWarningIndicators returns a copy of the indicator catalog.
func EarlyWarningIndicators() []models.WarningIndicator {
	return append([]models.WarningIndicator(nil), earlyWarningIndicators...)
}

func label(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

func (m *Model) involvesNuclear(countries []string) bool {
	for _, c := range countries {
		if m.tables.IsNuclear(c) {
			return true
		}
	}
	return false
}

func (m *Model) involvesSuperpower(countries []string) bool {
	for _, c := range countries {
		if m.tables.IsSuperpower(c) {
			return true
		}
	}
	return false
}
