// Package history records finished runs so reports can be reopened by id.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/boss6825/pharmintel/internal/timeline"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no run matches a lookup.
var ErrNotFound = errors.New("run not found")

// Run status constants
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusAborted   = "aborted"
)

// Run is a finished run and its terminal timeline snapshot.
type Run struct {
	ID          int64
	RunID       string
	CreatedAt   time.Time
	CompletedAt time.Time
	Query       string
	Status      string
	Total       int
	Succeeded   int
	Failed      int
	Skipped     int
	Duration    time.Duration
	Entries     []timeline.Entry
}

// StatusFor derives the stored status of a run from its summary.
func StatusFor(s timeline.Summary) string {
	switch {
	case s.Aborted:
		return StatusAborted
	case s.Failed > 0:
		return StatusPartial
	default:
		return StatusCompleted
	}
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP NOT NULL,
		query TEXT NOT NULL,
		status TEXT NOT NULL,
		total INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		skipped INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entries (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		message TEXT NOT NULL,
		timestamp TEXT,
		UNIQUE(run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Databases created before skipped runs were tracked lack the column.
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('runs') WHERE name = 'skipped'`).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		_, err = s.db.Exec(`ALTER TABLE runs ADD COLUMN skipped INTEGER NOT NULL DEFAULT 0`)
	}
	return err
}

// Record stores a finished run and its entries, returning the report id.
func (s *Store) Record(ctx context.Context, query string, summary timeline.Summary, entries []timeline.Entry) (int64, error) {
	completed := time.Now().UTC()
	started := completed.Add(-summary.Duration)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, completed_at, query, status, total, succeeded, failed, skipped, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID, started, completed, query, StatusFor(summary),
		summary.Total, summary.Succeeded, summary.Failed, summary.Skipped, summary.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, e := range entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO entries (run_id, position, name, status, message, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
			id, i, e.Name, string(e.Status), e.Message, nullString(e.Timestamp),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// Get loads a run and its entries by report id.
func (s *Store) Get(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, created_at, completed_at, query, status, total, succeeded, failed, skipped, duration_ms
		 FROM runs WHERE id = ?`, id,
	)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, err
	}

	if err := s.loadEntries(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Latest loads the most recently recorded run.
func (s *Store) Latest(ctx context.Context) (*Run, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// List returns up to limit runs, newest first, without their entries.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, created_at, completed_at, query, status, total, succeeded, failed, skipped, duration_ms
		 FROM runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Run
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) loadEntries(ctx context.Context, rec *Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, status, message, timestamp FROM entries WHERE run_id = ? ORDER BY position`, rec.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e timeline.Entry
		var status string
		var ts sql.NullString
		if err := rows.Scan(&e.Name, &status, &e.Message, &ts); err != nil {
			return err
		}
		e.Status = timeline.Status(status)
		if ts.Valid {
			e.Timestamp = ts.String
		}
		rec.Entries = append(rec.Entries, e)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Run, error) {
	var rec Run
	var durationMS int64
	err := row.Scan(
		&rec.ID, &rec.RunID, &rec.CreatedAt, &rec.CompletedAt, &rec.Query,
		&rec.Status, &rec.Total, &rec.Succeeded, &rec.Failed, &rec.Skipped, &durationMS,
	)
	if err != nil {
		return nil, err
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// FormatAge renders how long ago t was, for listings.
func FormatAge(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2")
	}
}
