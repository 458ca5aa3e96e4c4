// Package storage persists extraction runs to SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ikhlasbhojani/learnme/internal/types"
)

// Store wraps an SQLite database holding extraction history.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the extraction database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS extraction_runs (
		id TEXT PRIMARY KEY,
		main_url TEXT NOT NULL,
		user_id TEXT,
		mode TEXT NOT NULL,
		spa_detected INTEGER NOT NULL DEFAULT 0,
		total_pages INTEGER NOT NULL,
		max_depth INTEGER NOT NULL,
		topics TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_main_url ON extraction_runs(main_url);
	CREATE INDEX IF NOT EXISTS idx_runs_user_id ON extraction_runs(user_id);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON extraction_runs(created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveRun persists one extraction run. A missing ID or CreatedAt is
// filled in; the assigned values are returned on the copy.
func (s *Store) SaveRun(ctx context.Context, run types.ExtractionRun) (types.ExtractionRun, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	topicsJSON, err := json.Marshal(run.Topics)
	if err != nil {
		return run, fmt.Errorf("failed to encode topics: %w", err)
	}

	query := `
		INSERT INTO extraction_runs
		(id, main_url, user_id, mode, spa_detected, total_pages, max_depth, topics, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.MainURL,
		run.UserID,
		run.Mode,
		run.SPADetected,
		run.TotalPages,
		run.MaxDepth,
		string(topicsJSON),
		run.CreatedAt,
	)
	if err != nil {
		return run, fmt.Errorf("failed to save run: %w", err)
	}
	return run, nil
}

// GetRun fetches one run by id. Returns sql.ErrNoRows when absent.
func (s *Store) GetRun(ctx context.Context, id string) (types.ExtractionRun, error) {
	query := `
		SELECT id, main_url, user_id, mode, spa_detected, total_pages, max_depth, topics, created_at
		FROM extraction_runs WHERE id = ?
	`
	return scanRun(s.db.QueryRowContext(ctx, query, id))
}

// ListRuns returns runs newest-first, optionally filtered by user id.
func (s *Store) ListRuns(ctx context.Context, userID string, limit int) ([]types.ExtractionRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, main_url, user_id, mode, spa_detected, total_pages, max_depth, topics, created_at
		FROM extraction_runs
	`
	args := []any{}
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]types.ExtractionRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (types.ExtractionRun, error) {
	var run types.ExtractionRun
	var userID sql.NullString
	var topicsJSON string

	err := row.Scan(
		&run.ID,
		&run.MainURL,
		&userID,
		&run.Mode,
		&run.SPADetected,
		&run.TotalPages,
		&run.MaxDepth,
		&topicsJSON,
		&run.CreatedAt,
	)
	if err != nil {
		return run, err
	}
	run.UserID = userID.String

	if err := json.Unmarshal([]byte(topicsJSON), &run.Topics); err != nil {
		return run, fmt.Errorf("failed to decode topics for run %s: %w", run.ID, err)
	}
	return run, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
