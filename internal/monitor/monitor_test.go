package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rewired-gh/georisk/internal/models"
	"github.com/rewired-gh/georisk/internal/storage"
)

func mustStorage(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New(100, ":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func assessment(countries []string, at time.Time, overall float64, level models.RiskLevel, pillars map[models.PillarName]float64, high ...string) *models.RiskAssessment {
	scores := make(map[models.PillarName]models.PillarScore)
	for _, p := range models.AllPillars {
		scores[p] = models.PillarScore{Score: pillars[p], Confidence: 0.8}
	}
	return &models.RiskAssessment{
		ID:           uuid.New().String(),
		Countries:    countries,
		Timestamp:    at,
		PillarScores: scores,
		OverallRisk:  models.OverallRisk{Score: overall, Level: level, Confidence: 0.8},
		RiskFactors:  models.RiskFactors{HighPriority: high},
	}
}

func flat(v float64) map[models.PillarName]float64 {
	out := make(map[models.PillarName]float64)
	for _, p := range models.AllPillars {
		out[p] = v
	}
	return out
}

// ─── Compare ────────────────────────────────────────────────────────────────

func TestCompare(t *testing.T) {
	m := New(nil, nil, 0, 0)
	now := time.Now()

	prevPillars := flat(50)
	currPillars := flat(50)
	currPillars[models.PillarMilitary] = 70
	currPillars[models.PillarNarratives] = 34

	prev := assessment([]string{"ISR", "IRN"}, now.Add(-2*time.Hour), 52, models.RiskModerate, prevPillars,
		"Nuclear weapons involved: ISR")
	curr := assessment([]string{"IRN", "ISR"}, now, 66, models.RiskHigh, currPillars,
		"Nuclear weapons involved: ISR", "High military risk (score: 78.0)")

	change, err := m.Compare(prev, curr)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	if change.Trend != models.TrendIncreasing {
		t.Errorf("Expected trend Increasing, got %s", change.Trend)
	}
	if change.Change < 13.99 || change.Change > 14.01 {
		t.Errorf("Expected change 14, got %f", change.Change)
	}
	if !change.LevelChanged() {
		t.Error("Expected level change Moderate -> High")
	}
	if change.Interval != 2*time.Hour {
		t.Errorf("Expected interval 2h, got %v", change.Interval)
	}

	// military moved +20, narratives -16: both exceed 15
	if len(change.Alerts) != 2 {
		t.Fatalf("Expected 2 alerts, got %d: %v", len(change.Alerts), change.Alerts)
	}
	if change.Alerts[0] != "Significant change in narratives: -16.0 points" {
		t.Errorf("Unexpected first alert: %q", change.Alerts[0])
	}
	if change.Alerts[1] != "Significant change in military: +20.0 points" {
		t.Errorf("Unexpected second alert: %q", change.Alerts[1])
	}

	if pc := change.PillarChanges[models.PillarMilitary]; pc.Previous != 50 || pc.Current != 70 || pc.Change != 20 {
		t.Errorf("Unexpected military pillar change: %+v", pc)
	}

	if len(change.NewRiskFactors) != 1 || change.NewRiskFactors[0] != "High military risk (score: 78.0)" {
		t.Errorf("Unexpected new risk factors: %v", change.NewRiskFactors)
	}

	if err := change.Validate(); err != nil {
		t.Errorf("Change should validate: %v", err)
	}
}

func TestCompareRejectsDifferentCountrySets(t *testing.T) {
	m := New(nil, nil, 0, 0)
	now := time.Now()
	a := assessment([]string{"ISR"}, now, 50, models.RiskModerate, flat(50))
	b := assessment([]string{"IRN"}, now, 50, models.RiskModerate, flat(50))

	if _, err := m.Compare(a, b); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if _, err := m.Compare(nil, b); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil previous, got %v", err)
	}
}

func TestTrend(t *testing.T) {
	m := New(nil, nil, 0, 0)
	tests := []struct {
		delta float64
		want  string
	}{
		{5.1, models.TrendIncreasing},
		{5, models.TrendStable},
		{0, models.TrendStable},
		{-5, models.TrendStable},
		{-5.1, models.TrendDecreasing},
	}
	for _, tt := range tests {
		if got := m.Trend(tt.delta); got != tt.want {
			t.Errorf("Trend(%v) = %s, want %s", tt.delta, got, tt.want)
		}
	}

	custom := New(nil, nil, 10, 0)
	if got := custom.Trend(8); got != models.TrendStable {
		t.Errorf("Trend(8) with threshold 10 = %s, want Stable", got)
	}
}

// ─── Track ──────────────────────────────────────────────────────────────────

func TestTrack(t *testing.T) {
	ctx := context.Background()
	s := mustStorage(t)
	m := New(s, nil, 0, 0)
	now := time.Now()

	first := assessment([]string{"USA", "CHN"}, now.Add(-time.Hour), 70, models.RiskHigh, flat(70))

	// Nothing stored yet
	change, err := m.Track(ctx, first)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if change != nil {
		t.Errorf("Expected nil change without history, got %+v", change)
	}

	if err := s.SaveAssessment(ctx, first); err != nil {
		t.Fatalf("SaveAssessment failed: %v", err)
	}

	second := assessment([]string{"CHN", "USA"}, now, 58, models.RiskModerate, flat(58))
	change, err = m.Track(ctx, second)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if change == nil {
		t.Fatal("Expected change against stored assessment")
	}
	if change.Trend != models.TrendDecreasing {
		t.Errorf("Expected Decreasing, got %s", change.Trend)
	}
	if change.PreviousID != first.ID || change.CurrentID != second.ID {
		t.Errorf("Unexpected IDs: prev=%s curr=%s", change.PreviousID, change.CurrentID)
	}
}

func TestTrackSameAssessment(t *testing.T) {
	ctx := context.Background()
	s := mustStorage(t)
	m := New(s, nil, 0, 0)

	a := assessment([]string{"PRK"}, time.Now(), 40, models.RiskLow, flat(40))
	if err := s.SaveAssessment(ctx, a); err != nil {
		t.Fatalf("SaveAssessment failed: %v", err)
	}
	change, err := m.Track(ctx, a)
	if err != nil || change != nil {
		t.Errorf("Expected no change when comparing an assessment to itself, got %v, %v", change, err)
	}
}

func worldWar(score float64, probability string, at time.Time) *models.WorldWarAssessment {
	return &models.WorldWarAssessment{
		ID:                  uuid.New().String(),
		Countries:           []string{"USA", "CHN"},
		Timestamp:           at,
		WorldWarRiskScore:   score,
		WorldWarProbability: probability,
	}
}

func TestTrackWorldWar(t *testing.T) {
	ctx := context.Background()
	s := mustStorage(t)
	m := New(s, nil, 0, 0)
	now := time.Now()

	first := worldWar(62, "High (50-70%)", now.Add(-time.Hour))
	notable, err := m.TrackWorldWar(ctx, first)
	if err != nil || !notable {
		t.Fatalf("Expected first world war assessment to be notable, got %v, %v", notable, err)
	}
	if err := s.SaveWorldWar(ctx, first); err != nil {
		t.Fatalf("SaveWorldWar failed: %v", err)
	}

	if notable, _ := m.TrackWorldWar(ctx, first); notable {
		t.Error("Same assessment should not be notable")
	}

	tests := []struct {
		name        string
		score       float64
		probability string
		want        bool
	}{
		{"small move same band", 65, "High (50-70%)", false},
		{"large move same band", 68, "High (50-70%)", true},
		{"band change", 63, "Very High (70-85%)", true},
	}
	for _, tt := range tests {
		got, err := m.TrackWorldWar(ctx, worldWar(tt.score, tt.probability, now))
		if err != nil {
			t.Fatalf("%s: TrackWorldWar failed: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: notable = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTrackWithoutHistory(t *testing.T) {
	m := New(nil, nil, 0, 0)
	if _, err := m.TrackWorldWar(context.Background(), worldWar(50, "Moderate", time.Now())); err == nil {
		t.Error("Expected error without history")
	}
	if _, err := m.Track(context.Background(), assessment([]string{"USA"}, time.Now(), 50, models.RiskModerate, flat(50))); err == nil {
		t.Error("Expected error without history")
	}
}

func TestNotable(t *testing.T) {
	stable := &models.RiskChange{Trend: models.TrendStable, PreviousLevel: models.RiskLow, CurrentLevel: models.RiskLow}
	if Notable(stable) {
		t.Error("Stable change without alerts should not be notable")
	}
	alert := *stable
	alert.Alerts = []string{"Significant change in events: +16.0 points"}
	if !Notable(&alert) {
		t.Error("Change with a pillar alert should be notable")
	}
	level := *stable
	level.CurrentLevel = models.RiskModerate
	if !Notable(&level) {
		t.Error("Level change should be notable")
	}
}

// ─── Cooldown (FilterRecentlySent / RecordNotified) tests ────────────────────

// TestFilterRecentlySent_SuppressesDuplicates verifies that a country set notified
// recently with the same trend is suppressed within the cooldown window.
func TestFilterRecentlySent_SuppressesDuplicates(t *testing.T) {
	mon := New(nil, nil, 0, 0)

	change := &models.RiskChange{
		ID: uuid.New().String(), CountryKey: "IRN,ISR",
		Trend: models.TrendIncreasing, CurrentLevel: models.RiskHigh,
	}
	mon.RecordNotified([]*models.RiskChange{change})

	filtered := mon.FilterRecentlySent([]*models.RiskChange{change}, time.Hour)
	if len(filtered) != 0 {
		t.Errorf("Expected 0 changes after suppressing duplicate, got %d", len(filtered))
	}
}

// TestFilterRecentlySent_AllowsTrendReversal verifies that a reversed trend is not
// suppressed.
func TestFilterRecentlySent_AllowsTrendReversal(t *testing.T) {
	mon := New(nil, nil, 0, 0)

	up := &models.RiskChange{ID: uuid.New().String(), CountryKey: "IRN,ISR", Trend: models.TrendIncreasing, CurrentLevel: models.RiskHigh}
	down := &models.RiskChange{ID: uuid.New().String(), CountryKey: "IRN,ISR", Trend: models.TrendDecreasing, CurrentLevel: models.RiskHigh}
	mon.RecordNotified([]*models.RiskChange{up})

	filtered := mon.FilterRecentlySent([]*models.RiskChange{down}, time.Hour)
	if len(filtered) != 1 {
		t.Errorf("Expected 1 change (trend reversed), got %d", len(filtered))
	}
}

// TestFilterRecentlySent_AllowsLevelChange verifies that crossing into a new band
// is reported even with the same trend.
func TestFilterRecentlySent_AllowsLevelChange(t *testing.T) {
	mon := New(nil, nil, 0, 0)

	high := &models.RiskChange{ID: uuid.New().String(), CountryKey: "CHN,USA", Trend: models.TrendIncreasing, CurrentLevel: models.RiskHigh}
	critical := &models.RiskChange{ID: uuid.New().String(), CountryKey: "CHN,USA", Trend: models.TrendIncreasing, CurrentLevel: models.RiskCritical}
	mon.RecordNotified([]*models.RiskChange{high})

	filtered := mon.FilterRecentlySent([]*models.RiskChange{critical}, time.Hour)
	if len(filtered) != 1 {
		t.Errorf("Expected 1 change (level changed), got %d", len(filtered))
	}
}

// TestFilterRecentlySent_CooldownExpired verifies that duplicates pass once the
// cooldown has elapsed.
func TestFilterRecentlySent_CooldownExpired(t *testing.T) {
	mon := New(nil, nil, 0, 0)
	start := time.Now()
	mon.now = func() time.Time { return start }

	change := &models.RiskChange{ID: uuid.New().String(), CountryKey: "RUS,UKR", Trend: models.TrendIncreasing, CurrentLevel: models.RiskHigh}
	mon.RecordNotified([]*models.RiskChange{change})

	mon.now = func() time.Time { return start.Add(2 * time.Hour) }
	filtered := mon.FilterRecentlySent([]*models.RiskChange{change}, time.Hour)
	if len(filtered) != 1 {
		t.Errorf("Expected 1 change after cooldown expired, got %d", len(filtered))
	}
}

func TestFilterRecentlySent_EmptyInputReturnsNonNil(t *testing.T) {
	mon := New(nil, nil, 0, 0)
	if got := mon.FilterRecentlySent(nil, time.Hour); got == nil {
		t.Error("Expected non-nil empty slice")
	}
}
