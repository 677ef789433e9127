// Package journal keeps a local record of the actions that reached the
// products API (login, create, update, delete) and of CSV exports.
// Credentials and tokens are never stored.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Action string

const (
	ActionLogin  Action = "login"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionExport Action = "export"
)

type Outcome string

const (
	OutcomeOK     Outcome = "ok"
	OutcomeFailed Outcome = "failed"
)

// Entry is one journal line.
type Entry struct {
	ID        string
	At        time.Time
	Action    Action
	ProductID string
	Outcome   Outcome
	Detail    string
}

// Recorder is what the screens write to.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards everything. It is used when the journal is disabled.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

const createTableSQL = `
CREATE TABLE IF NOT EXISTS journal (
    id         TEXT PRIMARY KEY,
    at         INTEGER NOT NULL,
    action     TEXT NOT NULL,
    product_id TEXT DEFAULT '',
    outcome    TEXT NOT NULL,
    detail     TEXT DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_journal_at ON journal(at);
`

// Store is the SQLite-backed journal.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultPath returns ~/.local/share/estoque/journal.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "estoque", "journal.db"), nil
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Record stores e, filling in ID and At when they are zero.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal (id, at, action, product_id, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.At.UnixNano(), string(e.Action), e.ProductID, string(e.Outcome), e.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// List returns the newest entries first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, at, action, product_id, outcome, detail
		FROM journal
		ORDER BY at DESC, rowid DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e               Entry
			at              int64
			action, outcome string
		)
		if err := rows.Scan(&e.ID, &at, &action, &e.ProductID, &outcome, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.At = time.Unix(0, at)
		e.Action = Action(action)
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
