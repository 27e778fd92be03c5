// Package sqlite records session results in a SQLite history database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/sketchui"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	session_id  TEXT PRIMARY KEY,
	sketch      TEXT NOT NULL,
	instruction TEXT NOT NULL,
	markup      TEXT NOT NULL,
	style       TEXT NOT NULL,
	script      TEXT NOT NULL,
	raw         TEXT NOT NULL,
	verdict     TEXT NOT NULL,
	termination TEXT NOT NULL,
	attempts    INTEGER NOT NULL,
	iterations  INTEGER NOT NULL,
	created_at  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_finished_at ON results(finished_at);
`

// ErrNotFound is returned by Get when no result has the given session id.
var ErrNotFound = errors.New("sqlite: result not found")

// Store is a sketchui.ResultSink backed by SQLite.
type Store struct {
	db *sql.DB
}

var _ sketchui.ResultSink = (*Store)(nil)

// Open creates or opens the database at path and initializes the schema.
// The special path ":memory:" opens an in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create db directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save implements sketchui.ResultSink. Saving a session id twice replaces
// the earlier row.
func (s *Store) Save(ctx context.Context, r sketchui.Result) error {
	if r.SessionID == "" {
		return fmt.Errorf("sqlite: result has no session id: %w", sketchui.ErrValidation)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO results (
			session_id, sketch, instruction, markup, style, script, raw,
			verdict, termination, attempts, iterations, created_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.SessionID, r.SketchRef, r.Instruction,
		r.Candidate.Markup, r.Candidate.Style, r.Candidate.Script, r.Candidate.Raw,
		r.VerdictText, string(r.Termination), r.Attempts, r.Iterations,
		r.CreatedAt.UnixNano(), r.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert result: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT session_id, sketch, instruction, markup, style, script, raw,
		verdict, termination, attempts, iterations, created_at, finished_at
	FROM results`

// Get returns the result recorded for a session id.
func (s *Store) Get(ctx context.Context, sessionID string) (sketchui.Result, error) {
	r, err := scanResult(s.db.QueryRowContext(ctx, selectColumns+` WHERE session_id = ?`, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return sketchui.Result{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return sketchui.Result{}, fmt.Errorf("sqlite: get result: %w", err)
	}
	return r, nil
}

// List returns up to limit results, most recently finished first. A limit
// of zero or less returns every result.
func (s *Store) List(ctx context.Context, limit int) ([]sketchui.Result, error) {
	query := selectColumns + ` ORDER BY finished_at DESC, session_id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list results: %w", err)
	}
	defer rows.Close()

	var results []sketchui.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list results: %w", err)
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (sketchui.Result, error) {
	var (
		r                 sketchui.Result
		termination       string
		created, finished int64
	)
	err := row.Scan(
		&r.SessionID, &r.SketchRef, &r.Instruction,
		&r.Candidate.Markup, &r.Candidate.Style, &r.Candidate.Script, &r.Candidate.Raw,
		&r.VerdictText, &termination, &r.Attempts, &r.Iterations,
		&created, &finished,
	)
	if err != nil {
		return sketchui.Result{}, err
	}
	r.Termination = sketchui.Termination(termination)
	r.CreatedAt = time.Unix(0, created).UTC()
	r.FinishedAt = time.Unix(0, finished).UTC()
	return r, nil
}
