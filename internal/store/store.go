// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/verte-zerg/sumback/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for settings and session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			nback INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			accuracy_pct REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			lowest_isi_ms INTEGER NOT NULL,
			trial_count INTEGER NOT NULL,
			avg_latency_ms REAL NOT NULL,
			best_run INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_mode ON sessions(mode);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetJSON loads one settings record into v. Missing keys and corrupt values
// both report found=false so callers fall back to defaults; only real
// database failures surface as errors.
func (s *Store) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, nil
	}
	return true, nil
}

// PutJSON stores one settings record as JSON.
func (s *Store) PutJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode setting %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw))
	return err
}

// settingsKey holds the whole Settings record.
const settingsKey = "settings"

// LoadSettings returns the persisted settings clamped to valid ranges, or
// the defaults when nothing usable is stored.
func (s *Store) LoadSettings(ctx context.Context) (model.Settings, error) {
	cfg := model.DefaultSettings()
	found, err := s.GetJSON(ctx, settingsKey, &cfg)
	if err != nil {
		return model.DefaultSettings(), err
	}
	if !found {
		return model.DefaultSettings(), nil
	}
	return cfg.Clamp(), nil
}

// SaveSettings persists the settings, clamped.
func (s *Store) SaveSettings(ctx context.Context, cfg model.Settings) error {
	return s.PutJSON(ctx, settingsKey, cfg.Clamp())
}

// InsertSummary appends a session summary and returns its assigned id.
func (s *Store) InsertSummary(ctx context.Context, sum model.Summary) (string, error) {
	id := sum.ID
	if id == "" {
		id = ulid.Make().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, ended_at, mode, nback, correct, attempts, accuracy_pct, duration_ms, lowest_isi_ms, trial_count, avg_latency_ms, best_run)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		sum.EndedAt.Format(time.RFC3339Nano),
		string(sum.Mode),
		sum.NBack,
		sum.Correct,
		sum.Attempts,
		sum.AccuracyPct,
		sum.DurationMs,
		sum.LowestISIMs,
		sum.TrialCount,
		sum.AvgLatencyMs,
		sum.BestRun,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListSummaries returns summaries matching the filter, oldest first.
func (s *Store) ListSummaries(ctx context.Context, filter model.SummaryFilter) ([]model.Summary, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, string(filter.Mode))
	}
	if filter.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, filter.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, mode, nback, correct, attempts, accuracy_pct, duration_ms, lowest_isi_ms, trial_count, avg_latency_ms, best_run
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var summaries []model.Summary
	for rows.Next() {
		var sum model.Summary
		var endedAt, mode string
		if err := rows.Scan(&sum.ID, &endedAt, &mode, &sum.NBack, &sum.Correct, &sum.Attempts, &sum.AccuracyPct, &sum.DurationMs, &sum.LowestISIMs, &sum.TrialCount, &sum.AvgLatencyMs, &sum.BestRun); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		sum.EndedAt = parsed
		sum.Mode = model.Mode(mode)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(summaries) > filter.Last {
		summaries = summaries[len(summaries)-filter.Last:]
	}
	return summaries, nil
}

// ClearSummaries wipes the whole session collection. This is the only
// mutation of history besides appending.
func (s *Store) ClearSummaries(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
