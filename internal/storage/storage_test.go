package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/georisk/internal/models"
)

func mustStorage(t *testing.T, maxAssessments int) *Storage {
	t.Helper()
	s, err := New(maxAssessments, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newAssessment(countries []string, score float64, at time.Time) *models.RiskAssessment {
	scores := make(map[models.PillarName]models.PillarScore)
	for _, p := range models.AllPillars {
		scores[p] = models.PillarScore{Score: score, Confidence: 0.8}
	}
	gti := -42.0
	nar := scores[models.PillarNarratives]
	nar.Metadata.GTI = &gti
	scores[models.PillarNarratives] = nar

	return &models.RiskAssessment{
		ID:           uuid.New().String(),
		Countries:    countries,
		Timestamp:    at,
		PillarScores: scores,
		OverallRisk:  models.OverallRisk{Score: score, Level: models.RiskModerate, Confidence: 0.8},
		RiskFactors: models.RiskFactors{
			HighPriority: []string{"Nuclear weapons involved: ISR"},
		},
		Scenarios: map[string]models.Scenario{
			models.ScenarioDiplomaticTension: {Probability: "Moderate (20-40%)", Timeframe: "6-12 months"},
		},
		Recommendations: []string{"Maintain regular diplomatic contact"},
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(0, ":memory:")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "nested", "georisk.db")
	s, err := New(10, path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.FileExists(t, path)
}

func TestSaveAndLoadAssessment(t *testing.T) {
	ctx := context.Background()
	s := mustStorage(t, 100)

	now := time.Now().Truncate(time.Millisecond)
	a := newAssessment([]string{"ISR", "IRN"}, 55, now)
	require.NoError(t, s.SaveAssessment(ctx, a))

	// country order does not matter for lookups
	got, err := s.LatestAssessment(ctx, models.CountryKey([]string{"IRN", "ISR"}))
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.Countries, got.Countries)
	assert.True(t, a.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, 55.0, got.OverallRisk.Score)
	require.NotNil(t, got.PillarScores[models.PillarNarratives].Metadata.GTI)
	assert.Equal(t, -42.0, *got.PillarScores[models.PillarNarratives].Metadata.GTI)
	assert.Equal(t, a.RiskFactors.HighPriority, got.RiskFactors.HighPriority)
}

func TestSaveAssessmentRejectsInvalid(t *testing.T) {
	s := mustStorage(t, 100)
	a := newAssessment(nil, 55, time.Now())
	assert.Error(t, s.SaveAssessment(context.Background(), a))
}

func TestLatestAssessmentNotFound(t *testing.T) {
	s := mustStorage(t, 100)
	_, err := s.LatestAssessment(context.Background(), "USA")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = s.LatestWorldWar(context.Background(), "USA")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestListAssessmentsOrdering(t *testing.T) {
	ctx := context.Background()
	s := mustStorage(t, 100)

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 4; i++ {
		a := newAssessment([]string{"IND", "PAK"}, float64(40+i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.SaveAssessment(ctx, a))
		ids = append(ids, a.ID)
	}
	require.NoError(t, s.SaveAssessment(ctx, newAssessment([]string{"USA"}, 70, base)))

	list, err := s.ListAssessments(ctx, "IND,PAK", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[3], list[0].ID)
	assert.Equal(t, ids[2], list[1].ID)

	all, err := s.ListAssessments(ctx, "IND,PAK", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	recent, err := s.ListAssessmentsSince(ctx, "IND,PAK", base.Add(90*time.Second))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
}

func TestRotateAssessments(t *testing.T) {
	ctx := context.Background()
	s := mustStorage(t, 3)

	base := time.Now().Add(-time.Hour)
	var newest string
	for i := 0; i < 5; i++ {
		a := newAssessment([]string{"CHN", "USA"}, 60, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.SaveAssessment(ctx, a))
		newest = a.ID
	}

	removed, err := s.RotateAssessments(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	n, err := s.CountAssessments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	latest, err := s.LatestAssessment(ctx, "CHN,USA")
	require.NoError(t, err)
	assert.Equal(t, newest, latest.ID)
}

func TestSaveAndLoadWorldWar(t *testing.T) {
	ctx := context.Background()
	s := mustStorage(t, 10)

	w := &models.WorldWarAssessment{
		ID:                  uuid.New().String(),
		Countries:           []string{"USA", "CHN", "RUS"},
		Theaters:            []string{"Pacific"},
		Timestamp:           time.Now(),
		WorldWarRiskScore:   100,
		WorldWarProbability: "Extreme (>70%)",
		TimelineToGlobalWar: "1-4 weeks",
		EscalationFactors:   []string{models.TriggerNuclearThreshold},
	}
	require.NoError(t, s.SaveWorldWar(ctx, w))

	got, err := s.LatestWorldWar(ctx, "CHN,RUS,USA")
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, w.EscalationFactors, got.EscalationFactors)

	bad := *w
	bad.WorldWarProbability = ""
	assert.Error(t, s.SaveWorldWar(ctx, &bad))
}
