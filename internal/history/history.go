// Package history journals every interpreted utterance to a local SQLite
// database so past commands can be inspected and exported.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS utterances (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	at         TEXT    NOT NULL,
	transcript TEXT    NOT NULL,
	kind       TEXT    NOT NULL,
	action     TEXT    NOT NULL,
	applied    INTEGER NOT NULL,
	error      TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS utterances_at ON utterances (at);
`

// Entry is one journalled utterance.
type Entry struct {
	At         time.Time `json:"at"`
	Transcript string    `json:"transcript"`
	Kind       string    `json:"kind"`
	Action     string    `json:"action"`
	Applied    bool      `json:"applied"`
	Error      string    `json:"error,omitempty"`
}

// Store is an append-mostly journal backed by SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the journal database, its parent directory included.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// One writer at a time; the session serializes appends anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append journals one entry.
func (s *Store) Append(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO utterances (at, transcript, kind, action, applied, error) VALUES (?, ?, ?, ?, ?, ?)`,
		e.At.UTC().Format(time.RFC3339Nano), e.Transcript, e.Kind, e.Action, e.Applied, e.Error,
	)
	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT at, transcript, kind, action, applied, error FROM utterances ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&at, &e.Transcript, &e.Kind, &e.Action, &e.Applied, &e.Error); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parse history timestamp %q: %w", at, err)
		}
		e.At = parsed
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
