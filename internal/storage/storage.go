// Package storage persists risk and world-war assessments in an embedded SQLite database.
//
// Each assessment is stored as a JSON document next to the columns needed to look it
// up: its ID, the canonical country key and its timestamp. History is bounded by
// RotateAssessments, which keeps only the newest rows.
//
// Pass ":memory:" as the path for a throwaway in-process database.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rewired-gh/georisk/internal/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS risk_assessments (
	id          TEXT PRIMARY KEY,
	country_key TEXT NOT NULL,
	score       REAL NOT NULL,
	level       TEXT NOT NULL,
	assessed_at INTEGER NOT NULL,
	payload     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_risk_assessments_key ON risk_assessments (country_key, assessed_at);

CREATE TABLE IF NOT EXISTS world_war_assessments (
	id          TEXT PRIMARY KEY,
	country_key TEXT NOT NULL,
	score       REAL NOT NULL,
	probability TEXT NOT NULL,
	assessed_at INTEGER NOT NULL,
	payload     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_world_war_assessments_key ON world_war_assessments (country_key, assessed_at);
`

// Storage is a SQLite-backed assessment history. Safe for concurrent use.
type Storage struct {
	db             *sql.DB
	maxAssessments int
}

// New opens (creating if needed) the database at path and applies the schema.
// maxAssessments bounds each table when RotateAssessments runs.
func New(maxAssessments int, path string) (*Storage, error) {
	if maxAssessments < 1 {
		return nil, fmt.Errorf("max assessments must be at least 1, got %d", maxAssessments)
	}
	if path == "" {
		path = filepath.Join(os.TempDir(), "georisk", "georisk.db")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Storage{db: db, maxAssessments: maxAssessments}, nil
}

// Close releases the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveAssessment stores a risk assessment. Saving the same ID twice replaces the row.
func (s *Storage) SaveAssessment(ctx context.Context, a *models.RiskAssessment) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid assessment: %w", err)
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO risk_assessments (id, country_key, score, level, assessed_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.CountryKey(), a.OverallRisk.Score, string(a.OverallRisk.Level), a.Timestamp.UnixNano(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save assessment %s: %w", a.ID, err)
	}
	return nil
}

// LatestAssessment returns the newest assessment for the country key.
// Returns models.ErrNotFound when none is stored.
func (s *Storage) LatestAssessment(ctx context.Context, countryKey string) (*models.RiskAssessment, error) {
	list, err := s.ListAssessments(ctx, countryKey, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no assessment for %s: %w", countryKey, models.ErrNotFound)
	}
	return list[0], nil
}

// ListAssessments returns up to limit assessments for the country key, newest first.
// A non-positive limit returns all of them.
func (s *Storage) ListAssessments(ctx context.Context, countryKey string, limit int) ([]*models.RiskAssessment, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM risk_assessments
		WHERE country_key = ?
		ORDER BY assessed_at DESC, rowid DESC
		LIMIT ?`, countryKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	return scanAssessments(rows)
}

// SaveWorldWar stores a world-war assessment.
func (s *Storage) SaveWorldWar(ctx context.Context, w *models.WorldWarAssessment) error {
	if err := w.Validate(); err != nil {
		return fmt.Errorf("invalid world war assessment: %w", err)
	}
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to encode world war assessment: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO world_war_assessments (id, country_key, score, probability, assessed_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.CountryKey(), w.WorldWarRiskScore, w.WorldWarProbability, w.Timestamp.UnixNano(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save world war assessment %s: %w", w.ID, err)
	}
	return nil
}

// LatestWorldWar returns the newest world-war assessment for the country key.
func (s *Storage) LatestWorldWar(ctx context.Context, countryKey string) (*models.WorldWarAssessment, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM world_war_assessments
		WHERE country_key = ?
		ORDER BY assessed_at DESC, rowid DESC
		LIMIT 1`, countryKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no world war assessment for %s: %w", countryKey, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query world war assessment: %w", err)
	}

	var w models.WorldWarAssessment
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return nil, fmt.Errorf("failed to decode world war assessment: %w", err)
	}
	return &w, nil
}

// RotateAssessments deletes all but the newest maxAssessments rows of each table and
// returns how many rows were removed.
func (s *Storage) RotateAssessments(ctx context.Context) (int64, error) {
	var removed int64
	for _, table := range []string{"risk_assessments", "world_war_assessments"} {
		res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
			DELETE FROM %s WHERE id NOT IN (
				SELECT id FROM %s ORDER BY assessed_at DESC, rowid DESC LIMIT ?
			)`, table, table), s.maxAssessments)
		if err != nil {
			return removed, fmt.Errorf("failed to rotate %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return removed, fmt.Errorf("failed to count rotated rows: %w", err)
		}
		removed += n
	}
	return removed, nil
}

// CountAssessments returns the number of stored risk assessments.
func (s *Storage) CountAssessments(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM risk_assessments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return n, nil
}

// ListAssessmentsSince returns assessments for the key at or after t, oldest first.
func (s *Storage) ListAssessmentsSince(ctx context.Context, countryKey string, t time.Time) ([]*models.RiskAssessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM risk_assessments
		WHERE country_key = ? AND assessed_at >= ?
		ORDER BY assessed_at ASC, rowid ASC`, countryKey, t.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	return scanAssessments(rows)
}

func scanAssessments(rows *sql.Rows) ([]*models.RiskAssessment, error) {
	defer rows.Close()

	var out []*models.RiskAssessment
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		var a models.RiskAssessment
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("failed to decode assessment: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assessments: %w", err)
	}
	return out, nil
}
