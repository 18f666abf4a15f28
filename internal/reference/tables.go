// Package reference holds the read-only tables the scoring core runs on: pillar weights,
// superpower and nuclear-state sets, alliance systems, economic powers and maritime
// chokepoints. A Tables value is built once at startup, validated, and handed to every
// component. Nothing in the core mutates it.
package reference

import (
	"fmt"
	"math"

	"github.com/rewired-gh/georisk/internal/models"
)

// weightTolerance absorbs float error when checking that weights sum to 1.
const weightTolerance = 1e-9

// Alliance is a named collective-defence or cooperation system.
type Alliance struct {
	Name    string
	Members []string
}

// Chokepoint is a country controlling a trade chokepoint and its disruption bonus.
type Chokepoint struct {
	Country string
	Name    string
	Bonus   float64
}

// Tables is the full set of constants used by the risk and escalation models.
type Tables struct {
	Weights        map[models.PillarName]float64
	Superpowers    []string
	NuclearStates  []string
	Alliances      []Alliance
	EconomicPowers []string
	Chokepoints    []Chokepoint
}

// NATO and CSTO are looked up by name for the cross-alliance bonus and pathways.
const (
	AllianceNATO = "NATO"
	AllianceCSTO = "CSTO"
)

// DefaultWeights returns the pillar weights; they sum to 1.0.
func DefaultWeights() map[models.PillarName]float64 {
	return map[models.PillarName]float64{
		models.PillarEvents:     0.25,
		models.PillarNarratives: 0.20,
		models.PillarNetworks:   0.15,
		models.PillarMilitary:   0.25,
		models.PillarEscalation: 0.15,
	}
}

// Default returns the built-in tables.
func Default() Tables {
	return Tables{
		Weights:       DefaultWeights(),
		Superpowers:   []string{"USA", "CHN", "RUS"},
		NuclearStates: []string{"USA", "RUS", "CHN", "GBR", "FRA", "IND", "PAK", "ISR", "PRK"},
		Alliances: []Alliance{
			{Name: AllianceNATO, Members: []string{"USA", "GBR", "FRA", "DEU", "ITA", "ESP", "POL", "TUR", "CAN"}},
			{Name: AllianceCSTO, Members: []string{"RUS", "BLR", "KAZ", "KGZ", "TJK", "ARM"}},
			{Name: "ANZUS", Members: []string{"USA", "AUS", "NZL"}},
			{Name: "US_BILATERAL", Members: []string{"JPN", "KOR", "PHL", "THA"}},
			{Name: "QUAD", Members: []string{"USA", "IND", "JPN", "AUS"}},
			{Name: "AUKUS", Members: []string{"AUS", "GBR", "USA"}},
			{Name: "SCO", Members: []string{"CHN", "RUS", "IND", "PAK", "KAZ", "KGZ", "TJK", "UZB"}},
		},
		EconomicPowers: []string{"USA", "CHN", "DEU", "JPN", "GBR", "FRA", "IND"},
		Chokepoints: []Chokepoint{
			{Country: "IRN", Name: "Strait of Hormuz", Bonus: 15},
			{Country: "EGY", Name: "Suez Canal", Bonus: 10},
			{Country: "TUR", Name: "Bosphorus Strait", Bonus: 8},
		},
	}
}

// Clone returns a deep copy of t. Components keep a clone so callers cannot change
// weights or sets after validation.
func (t Tables) Clone() Tables {
	cp := t.WithWeights(t.Weights)
	cp.Superpowers = append([]string(nil), t.Superpowers...)
	cp.NuclearStates = append([]string(nil), t.NuclearStates...)
	cp.EconomicPowers = append([]string(nil), t.EconomicPowers...)
	cp.Chokepoints = append([]Chokepoint(nil), t.Chokepoints...)
	cp.Alliances = make([]Alliance, len(t.Alliances))
	for i, a := range t.Alliances {
		cp.Alliances[i] = Alliance{Name: a.Name, Members: append([]string(nil), a.Members...)}
	}
	return cp
}

// WithWeights returns a copy of t using the given weights.
func (t Tables) WithWeights(weights map[models.PillarName]float64) Tables {
	cp := make(map[models.PillarName]float64, len(weights))
	for k, v := range weights {
		cp[k] = v
	}
	t.Weights = cp
	return t
}

// Validate checks the tables for the configuration errors that must stop startup.
func (t Tables) Validate() error {
	if len(t.Weights) != len(models.AllPillars) {
		return fmt.Errorf("%w: expected %d pillar weights, got %d", models.ErrConfiguration, len(models.AllPillars), len(t.Weights))
	}
	sum := 0.0
	for _, p := range models.AllPillars {
		w, ok := t.Weights[p]
		if !ok {
			return fmt.Errorf("%w: missing weight for pillar %s", models.ErrConfiguration, p)
		}
		if w <= 0 || math.IsNaN(w) {
			return fmt.Errorf("%w: weight for pillar %s must be positive", models.ErrConfiguration, p)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: pillar weights sum to %.6f, expected 1.0", models.ErrConfiguration, sum)
	}

	if len(t.Superpowers) == 0 {
		return fmt.Errorf("%w: superpower set is empty", models.ErrConfiguration)
	}
	if len(t.NuclearStates) == 0 {
		return fmt.Errorf("%w: nuclear state set is empty", models.ErrConfiguration)
	}

	seen := make(map[string]bool, len(t.Alliances))
	for _, a := range t.Alliances {
		if a.Name == "" {
			return fmt.Errorf("%w: alliance with empty name", models.ErrConfiguration)
		}
		if seen[a.Name] {
			return fmt.Errorf("%w: duplicate alliance %s", models.ErrConfiguration, a.Name)
		}
		seen[a.Name] = true
		if len(a.Members) == 0 {
			return fmt.Errorf("%w: alliance %s has no members", models.ErrConfiguration, a.Name)
		}
	}
	if !seen[AllianceNATO] || !seen[AllianceCSTO] {
		return fmt.Errorf("%w: alliance tables must define %s and %s", models.ErrConfiguration, AllianceNATO, AllianceCSTO)
	}
	return nil
}

// Alliance returns the members of the named alliance.
func (t Tables) Alliance(name string) []string {
	for _, a := range t.Alliances {
		if a.Name == name {
			return a.Members
		}
	}
	return nil
}

// IsSuperpower reports whether country is in the superpower set.
func (t Tables) IsSuperpower(country string) bool {
	return contains(t.Superpowers, country)
}

// IsNuclear reports whether country is a nuclear-weapon state.
func (t Tables) IsNuclear(country string) bool {
	return contains(t.NuclearStates, country)
}

// CountIn counts entries of countries found in set. Duplicates in countries count
// once per occurrence.
func CountIn(countries, set []string) int {
	n := 0
	for _, c := range countries {
		if contains(set, c) {
			n++
		}
	}
	return n
}

// FilterIn returns the entries of countries found in set, keeping order and duplicates.
func FilterIn(countries, set []string) []string {
	var out []string
	for _, c := range countries {
		if contains(set, c) {
			out = append(out, c)
		}
	}
	return out
}

// AnyIn reports whether any entry of countries is in set.
func AnyIn(countries, set []string) bool {
	for _, c := range countries {
		if contains(set, c) {
			return true
		}
	}
	return false
}

// Contains reports whether country is in countries.
func Contains(countries []string, country string) bool {
	return contains(countries, country)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
