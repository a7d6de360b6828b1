// Package history persists a ledger of completed audit runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ehrlich-b/logsift/internal/run"
)

// Store is the SQLite-backed run ledger.
type Store struct {
	db *sql.DB
}

// Open opens the ledger at path, creating it if needed.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL,
			period_start TEXT NOT NULL,
			period_end TEXT NOT NULL,
			level_filter TEXT NOT NULL DEFAULT '',
			files_found INTEGER NOT NULL,
			files_processed INTEGER NOT NULL,
			lines_extracted INTEGER NOT NULL,
			artifact_path TEXT NOT NULL,
			artifact_bytes INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one completed run into the ledger.
func (s *Store) Record(ctx context.Context, sum *run.Summary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, period_start, period_end, level_filter,
		                   files_found, files_processed, lines_extracted,
		                   artifact_path, artifact_bytes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.ID, sum.GeneratedAt, sum.Period.Start.String(), sum.Period.End.String(),
		sum.LevelFilter, sum.FilesFound, sum.FilesProcessed, sum.LinesExtracted,
		sum.OutputPath, sum.OutputSize)
	return err
}

// Entry is one ledger row.
type Entry struct {
	ID             string
	CreatedAt      time.Time
	PeriodStart    string
	PeriodEnd      string
	LevelFilter    string
	FilesFound     int
	FilesProcessed int
	LinesExtracted int
	ArtifactPath   string
	ArtifactBytes  int64
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, period_start, period_end, level_filter,
		        files_found, files_processed, lines_extracted,
		        artifact_path, artifact_bytes
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.PeriodStart, &e.PeriodEnd,
			&e.LevelFilter, &e.FilesFound, &e.FilesProcessed, &e.LinesExtracted,
			&e.ArtifactPath, &e.ArtifactBytes); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
