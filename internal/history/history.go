// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a summary row per completed run in a SQLite
// database, so operators can see what past runs touched without digging
// through log files.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/abstract-engine/internal/pipeline"
)

// Run is one recorded pipeline run.
type Run struct {
	ID         int64     `yaml:"id"`
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`
	Mode       string    `yaml:"mode"`
	Source     string    `yaml:"source"`
	Preview    bool      `yaml:"preview"`
	Checked    int       `yaml:"checked"`
	Missing    int       `yaml:"missing"`
	Eligible   int       `yaml:"eligible"`
	Found      int       `yaml:"found"`
	Updated    int       `yaml:"updated"`
	Approved   int       `yaml:"approved"`
	Skipped    int       `yaml:"skipped"`
	Errors     int       `yaml:"errors"`
}

// Store manages the run history SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database at path, creating the
// schema if it does not exist.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			source TEXT NOT NULL,
			preview INTEGER NOT NULL,
			checked INTEGER NOT NULL,
			missing INTEGER NOT NULL,
			eligible INTEGER NOT NULL,
			found INTEGER NOT NULL,
			updated INTEGER NOT NULL,
			approved INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			errors INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one completed run and returns it with the assigned ID.
func (s *Store) Record(ctx context.Context, startedAt, finishedAt time.Time, mode, source string, preview bool, stats pipeline.Stats) (Run, error) {
	run := Run{
		StartedAt:  startedAt.UTC(),
		FinishedAt: finishedAt.UTC(),
		Mode:       mode,
		Source:     source,
		Preview:    preview,
		Checked:    stats.Checked,
		Missing:    stats.Missing,
		Eligible:   stats.Eligible,
		Found:      stats.Found,
		Updated:    stats.Updated,
		Approved:   stats.Approved,
		Skipped:    stats.Skipped,
		Errors:     stats.Errors,
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, finished_at, mode, source, preview,
			checked, missing, eligible, found, updated, approved, skipped, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.Format(time.RFC3339Nano),
		run.FinishedAt.Format(time.RFC3339Nano),
		run.Mode, run.Source, run.Preview,
		run.Checked, run.Missing, run.Eligible, run.Found,
		run.Updated, run.Approved, run.Skipped, run.Errors,
	)
	if err != nil {
		return Run{}, fmt.Errorf("recording run: %w", err)
	}

	run.ID, err = res.LastInsertId()
	if err != nil {
		return Run{}, fmt.Errorf("reading run id: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, finished_at, mode, source, preview,
		checked, missing, eligible, found, updated, approved, skipped, errors
		FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished string
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.Mode, &run.Source, &run.Preview,
			&run.Checked, &run.Missing, &run.Eligible, &run.Found,
			&run.Updated, &run.Approved, &run.Skipped, &run.Errors); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing run %d start time: %w", run.ID, err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parsing run %d finish time: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// ExportYAML writes the most recent runs to w as a YAML document, newest
// first.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, limit int) error {
	runs, err := s.List(ctx, limit)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(runs)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}
