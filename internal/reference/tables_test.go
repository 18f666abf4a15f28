package reference

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/georisk/internal/models"
)

func TestDefaultTablesValidate(t *testing.T) {
	tables := Default()
	require.NoError(t, tables.Validate())

	sum := 0.0
	for _, w := range tables.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Len(t, tables.Superpowers, 3)
	assert.Len(t, tables.NuclearStates, 9)
	assert.Len(t, tables.Alliances, 7)
	assert.Len(t, tables.EconomicPowers, 7)
}

func TestValidateRejectsBrokenTables(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Tables)
	}{
		{
			name: "weights do not sum to one",
			mutate: func(tb *Tables) {
				tb.Weights[models.PillarEvents] = 0.30
			},
		},
		{
			name: "missing pillar weight",
			mutate: func(tb *Tables) {
				delete(tb.Weights, models.PillarNetworks)
			},
		},
		{
			name: "unknown pillar replaces known one",
			mutate: func(tb *Tables) {
				delete(tb.Weights, models.PillarNetworks)
				tb.Weights["cyber"] = 0.15
			},
		},
		{
			name: "zero weight",
			mutate: func(tb *Tables) {
				tb.Weights[models.PillarEvents] = 0
				tb.Weights[models.PillarMilitary] = 0.50
			},
		},
		{
			name: "alliance without members",
			mutate: func(tb *Tables) {
				tb.Alliances = append(tb.Alliances, Alliance{Name: "EMPTY"})
			},
		},
		{
			name: "duplicate alliance",
			mutate: func(tb *Tables) {
				tb.Alliances = append(tb.Alliances, Alliance{Name: "QUAD", Members: []string{"USA"}})
			},
		},
		{
			name: "NATO missing",
			mutate: func(tb *Tables) {
				tb.Alliances = tb.Alliances[1:]
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := Default()
			tt.mutate(&tables)
			err := tables.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrConfiguration))
		})
	}
}

func TestWithWeightsCopies(t *testing.T) {
	w := DefaultWeights()
	tables := Default().WithWeights(w)
	w[models.PillarEvents] = 0.9
	assert.Equal(t, 0.25, tables.Weights[models.PillarEvents])
}

func TestCloneIsDeep(t *testing.T) {
	orig := Default()
	cp := orig.Clone()

	cp.Weights[models.PillarEvents] = 0.9
	cp.Superpowers[0] = "BRA"
	cp.Alliances[0].Members[0] = "BRA"
	cp.Chokepoints[0].Bonus = 99

	assert.Equal(t, 0.25, orig.Weights[models.PillarEvents])
	assert.Equal(t, "USA", orig.Superpowers[0])
	assert.Equal(t, "USA", orig.Alliances[0].Members[0])
	assert.Equal(t, 15.0, orig.Chokepoints[0].Bonus)
	require.NoError(t, orig.Validate())
}

func TestMembershipHelpers(t *testing.T) {
	tables := Default()

	assert.True(t, tables.IsSuperpower("CHN"))
	assert.False(t, tables.IsSuperpower("GBR"))
	assert.True(t, tables.IsNuclear("PRK"))
	assert.False(t, tables.IsNuclear("IRN"))

	countries := []string{"USA", "USA", "DEU", "RUS"}
	assert.Equal(t, 3, CountIn(countries, tables.Superpowers))
	assert.Equal(t, []string{"USA", "USA", "RUS"}, FilterIn(countries, tables.NuclearStates))
	assert.True(t, AnyIn(countries, tables.Alliance(AllianceCSTO)))
	assert.False(t, AnyIn([]string{"BRA"}, tables.Alliance(AllianceNATO)))
	assert.Nil(t, tables.Alliance("WARSAW"))
}
