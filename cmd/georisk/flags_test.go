package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/georisk/internal/models"
)

func TestParsePillarScores(t *testing.T) {
	got, err := parsePillarScores([]string{"military=70:0.9", " Events = 55.5 : 0.6 "})
	require.NoError(t, err)
	assert.Equal(t, models.PillarScore{Score: 70, Confidence: 0.9}, got[models.PillarMilitary])
	assert.Equal(t, models.PillarScore{Score: 55.5, Confidence: 0.6}, got[models.PillarEvents])

	empty, err := parsePillarScores(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParsePillarScoresErrors(t *testing.T) {
	for _, v := range []string{
		"military",
		"military=70",
		"economy=70:0.9",
		"military=high:0.9",
		"military=70:sure",
	} {
		_, err := parsePillarScores([]string{v})
		assert.Error(t, err, v)
	}
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"Europe", "Pacific"}, cleanList([]string{" Europe", "", "Pacific "}))
	assert.Empty(t, cleanList(nil))
}

func TestAssessFlagHelp(t *testing.T) {
	cmd, _, err := newRootCmd().Find([]string{"assess"})
	require.NoError(t, err)
	assert.Contains(t, cmd.Flags().Lookup("gti").Usage, "Geopolitical Tension Index")
	assert.Contains(t, cmd.Flags().Lookup("systemic-risk").Usage, "[0, 2]")
}
