package pillars

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/georisk/internal/models"
)

func TestStatic(t *testing.T) {
	res := Static(models.PillarEvents, 72, 0.9).Score(nil)
	require.False(t, res.Failed())
	assert.Equal(t, 72.0, res.Score.Score)
	assert.Equal(t, 0.9, res.Score.Confidence)

	bad := Static(models.PillarEvents, 130, 0.9).Score(nil)
	assert.True(t, bad.Failed())
}

func TestEventLevels(t *testing.T) {
	tests := []struct {
		name    string
		levels  []string
		want    float64
		wantErr bool
	}{
		{name: "mixed", levels: []string{"Low", "High"}, want: 50},
		{name: "all critical", levels: []string{"Critical", "Critical"}, want: 100},
		{name: "unknown label counts as medium", levels: []string{"Unclear"}, want: 50},
		{name: "no predictions", levels: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := EventLevels(tt.levels).Score([]string{"ISR"})
			if tt.wantErr {
				assert.True(t, res.Failed())
				return
			}
			require.NoError(t, res.Err)
			assert.InDelta(t, tt.want, res.Score.Score, 1e-9)
			assert.Equal(t, eventConfidence, res.Score.Confidence)
			assert.Equal(t, tt.levels, res.Score.Metadata.Predictions)
		})
	}
}

func TestNarrative(t *testing.T) {
	res := Narrative(-60, 0.7).Score(nil)
	require.NoError(t, res.Err)
	assert.InDelta(t, 80, res.Score.Score, 1e-9)
	require.NotNil(t, res.Score.Metadata.GTI)
	assert.Equal(t, -60.0, *res.Score.Metadata.GTI)
	assert.Equal(t, "Critical", res.Score.Metadata.TensionLevel)

	assert.True(t, Narrative(-150, 0.7).Score(nil).Failed())
	assert.True(t, Narrative(10, 1.5).Score(nil).Failed())
}

func TestTensionLevel(t *testing.T) {
	tests := []struct {
		gti  float64
		want string
	}{
		{-80, "Critical"},
		{-50, "Critical"},
		{-30, "High"},
		{-25, "High"},
		{-5, "Elevated"},
		{0, "Moderate"},
		{25, "Moderate"},
		{60, "Low"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TensionLevel(tt.gti), "gti %v", tt.gti)
	}
}

func TestNetwork(t *testing.T) {
	res := Network([]float64{0.4, 0.6}, 1.0).Score(nil)
	require.NoError(t, res.Err)
	// (50 + 50) / 2
	assert.InDelta(t, 50, res.Score.Score, 1e-9)
	require.NotNil(t, res.Score.Metadata.SystemicRisk)
	assert.Equal(t, 50.0, *res.Score.Metadata.SystemicRisk)

	top := Network([]float64{1}, 2).Score(nil)
	require.NoError(t, top.Err)
	assert.Equal(t, 100.0, top.Score.Score)

	assert.True(t, Network(nil, 1).Score(nil).Failed())
	assert.True(t, Network([]float64{1.2}, 1).Score(nil).Failed())
	assert.True(t, Network([]float64{0.5}, math.NaN()).Score(nil).Failed())
	assert.True(t, Network([]float64{0.5}, -0.1).Score(nil).Failed())
	assert.True(t, Network([]float64{0.5}, 2.5).Score(nil).Failed())
}

func TestPowerIndex(t *testing.T) {
	catalog := DefaultCatalog()

	tests := []struct {
		country        string
		wantIndex      float64
		wantClass      string
		wantNuclear    string
		wantTechnology string
	}{
		{"USA", 87.28, "Superpower", "Nuclear-armed", "Tier_1"},
		{"RUS", 87.53, "Superpower", "Nuclear-armed", "Tier_1"},
		{"ISR", 60.14, "Regional Power", "Nuclear-armed", "Tier_1"},
		{"IRN", 42.56, "Middle Power", "Non-nuclear", "Tier_3"},
	}
	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			p := catalog.PowerIndex(tt.country)
			assert.InDelta(t, tt.wantIndex, p.PowerIndex, 0.05)
			assert.Equal(t, tt.wantClass, p.PowerClassification)
			assert.Equal(t, tt.wantNuclear, p.NuclearStatus)
			assert.Equal(t, tt.wantTechnology, p.TechnologyTier)
		})
	}

	unknown := catalog.PowerIndex("XXX")
	assert.Equal(t, "Tier_4", unknown.TechnologyTier)
	assert.Equal(t, "Small Power", unknown.PowerClassification)
}

func TestPowerClassification(t *testing.T) {
	assert.Equal(t, "Superpower", PowerClassification(85))
	assert.Equal(t, "Great Power", PowerClassification(84.9))
	assert.Equal(t, "Regional Power", PowerClassification(55))
	assert.Equal(t, "Middle Power", PowerClassification(40))
	assert.Equal(t, "Small Power", PowerClassification(39.9))
}

func TestMilitaryProvider(t *testing.T) {
	p := Military(DefaultCatalog())
	assert.Equal(t, models.PillarMilitary, p.Pillar())

	pair := p.Score([]string{"ISR", "IRN"})
	require.NoError(t, pair.Err)
	assert.InDelta(t, 30.84, pair.Score.Score, 0.05)
	assert.Equal(t, militaryConfidence, pair.Score.Confidence)
	assert.Len(t, pair.Score.Metadata.MilitaryProfiles, 2)
	assert.Empty(t, pair.Score.Metadata.Superpowers())

	single := p.Score([]string{"IRN"})
	require.NoError(t, single.Err)
	assert.InDelta(t, 42.56/2, single.Score.Score, 0.05)

	majors := p.Score([]string{"USA", "RUS"})
	require.NoError(t, majors.Err)
	assert.Equal(t, []string{"USA", "RUS"}, majors.Score.Metadata.Superpowers())

	assert.True(t, p.Score(nil).Failed())
	assert.True(t, Military(nil).Score([]string{"USA"}).Failed())
}

func TestEscalationProvider(t *testing.T) {
	p := Escalation(DefaultCatalog())
	assert.Equal(t, models.PillarEscalation, p.Pillar())

	tests := []struct {
		name         string
		countries    []string
		want         float64
		wantLevel    string
		wantNuclear  []string
		wantWarheads int
	}{
		{"one nuclear party", []string{"ISR", "IRN"}, 40, "Moderate", []string{"ISR"}, 90},
		{"two superpowers", []string{"USA", "RUS"}, 90, "Extreme", []string{"USA", "RUS"}, 11807},
		{"three superpowers", []string{"USA", "CHN", "RUS"}, 100, "Extreme", []string{"USA", "CHN", "RUS"}, 12157},
		{"no nuclear party", []string{"IRN", "SAU"}, 0, "Minimal", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Score(tt.countries)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.want, res.Score.Score)
			assert.Equal(t, escalationConfidence, res.Score.Confidence)
			assert.Equal(t, tt.wantLevel, res.Score.Metadata.EscalationRiskLevel)
			assert.Equal(t, tt.wantNuclear, res.Score.Metadata.NuclearCountries)
			assert.Equal(t, tt.wantWarheads, res.Score.Metadata.TotalWarheads)
		})
	}
}

func TestProviderFunc(t *testing.T) {
	boom := errors.New("feed offline")
	p := ProviderFunc{Name: models.PillarNetworks, Fn: func([]string) Result { return Fail(boom) }}
	assert.Equal(t, models.PillarNetworks, p.Pillar())
	res := p.Score([]string{"USA"})
	assert.True(t, res.Failed())
	assert.ErrorIs(t, res.Err, boom)
}
