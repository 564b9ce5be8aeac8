// Package archive persists analysis bundles in a local SQLite database
// so past runs can be listed and reloaded.
package archive

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jourq/jourq/internal/analyze"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound reports a run id with no archived row.
var ErrRunNotFound = errors.New("run not found")

// Store wraps the SQLite database holding archived runs.
type Store struct {
	db *sql.DB
}

// Run is one archived analysis run. The summary columns are
// denormalized from the bundle so listings never parse bundle JSON.
type Run struct {
	ID             int64     `json:"id"`
	ISSN           string    `json:"issn"`
	JournalName    string    `json:"journal_name,omitempty"`
	Period         string    `json:"period"`
	From           string    `json:"from"`
	Until          string    `json:"until"`
	ImpactFactor   *float64  `json:"impact_factor,omitempty"`
	TotalCitations int       `json:"total_citations"`
	SelfCitations  int       `json:"self_citations"`
	Partial        bool      `json:"partial,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// selectRunFields contains the standard field list for SELECT queries.
const selectRunFields = `id, issn, journal_name, period, from_date, until_date,
	impact_factor, total_citations, self_citations, partial, created_at`

// Open opens or creates the archive database at the given path, creating
// parent directories when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Archived analysis runs
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			issn TEXT NOT NULL,
			journal_name TEXT,
			period TEXT NOT NULL,
			from_date TEXT NOT NULL,
			until_date TEXT NOT NULL,
			impact_factor REAL,
			total_citations INTEGER NOT NULL,
			self_citations INTEGER NOT NULL,
			partial INTEGER NOT NULL,
			bundle_json TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		-- Index for per-journal history lookups
		CREATE INDEX IF NOT EXISTS idx_runs_issn ON runs(issn);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveBundle archives a bundle and returns the new run id.
func (s *Store) SaveBundle(b *analyze.Bundle) (int64, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return 0, fmt.Errorf("marshaling bundle: %w", err)
	}

	var impactFactor sql.NullFloat64
	if b.ImpactFactor != nil {
		impactFactor = sql.NullFloat64{Float64: b.ImpactFactor.Value, Valid: true}
	}

	createdAt := b.GeneratedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := s.db.Exec(`
		INSERT INTO runs (
			issn, journal_name, period, from_date, until_date,
			impact_factor, total_citations, self_citations, partial,
			bundle_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ISSN, nullableStringValue(b.JournalName), b.Period.String(),
		b.Period.From, b.Period.Until,
		impactFactor, b.Summary.TotalCitations, b.Summary.SelfCitations,
		b.Partial, string(raw), createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns archived runs newest first, at most limit rows when
// limit is positive.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + selectRunFields + ` FROM runs ORDER BY id DESC`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one archived run together with its full bundle.
func (s *Store) GetRun(id int64) (*Run, *analyze.Bundle, error) {
	row := s.db.QueryRow(`SELECT `+selectRunFields+`, bundle_json FROM runs WHERE id = ?`, id)

	var bundleJSON string
	run, err := scanRun(row, &bundleJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrRunNotFound
		}
		return nil, nil, fmt.Errorf("loading run %d: %w", id, err)
	}

	var bundle analyze.Bundle
	if err := json.Unmarshal([]byte(bundleJSON), &bundle); err != nil {
		return nil, nil, fmt.Errorf("parsing bundle for run %d: %w", id, err)
	}
	return &run, &bundle, nil
}

// DeleteRun removes one archived run.
func (s *Store) DeleteRun(id int64) error {
	res, err := s.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting run %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// Count returns the total number of archived runs.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner, extra ...interface{}) (Run, error) {
	var (
		run          Run
		journalName  sql.NullString
		impactFactor sql.NullFloat64
		createdAt    string
	)

	dest := []interface{}{
		&run.ID, &run.ISSN, &journalName, &run.Period, &run.From, &run.Until,
		&impactFactor, &run.TotalCitations, &run.SelfCitations, &run.Partial,
		&createdAt,
	}
	dest = append(dest, extra...)

	if err := sc.Scan(dest...); err != nil {
		return Run{}, err
	}

	run.JournalName = journalName.String
	if impactFactor.Valid {
		v := impactFactor.Float64
		run.ImpactFactor = &v
	}

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("parsing created_at for run %d: %w", run.ID, err)
	}
	run.CreatedAt = ts

	return run, nil
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
