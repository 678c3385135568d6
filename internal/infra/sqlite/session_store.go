// Package sqlite is an embedded single-file session store for local and CLI use.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"interview-coach-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS interview_sessions (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL,
    status     TEXT NOT NULL,
    created_at TEXT NOT NULL,
    version    INTEGER NOT NULL,
    data       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS interview_sessions_user_idx ON interview_sessions (user_id, created_at);
`

// SessionStore implements app.SessionRepository on SQLite.
type SessionStore struct {
	db *sql.DB
}

// Open connects to the database at dsn, applies pragmas and creates the schema.
func Open(dsn string) (*SessionStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// pragmas are per connection; one writer is all SQLite supports anyway
	db.SetMaxOpenConns(1)
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SessionStore{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *SessionStore) DB() *sql.DB {
	return s.db
}

func (s *SessionStore) Close() error {
	return s.db.Close()
}

func (s *SessionStore) Put(ctx context.Context, session *domain.Session) error {
	next := session.Version + 1
	stored := session.Clone()
	stored.Version = next
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	var res sql.Result
	if session.Version == 0 {
		res, err = s.db.ExecContext(ctx, `
INSERT INTO interview_sessions (id, user_id, status, created_at, version, data)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING`,
			session.ID, session.UserID, string(session.Status), session.CreatedAt.UTC().Format(time.RFC3339Nano), next, string(raw))
	} else {
		res, err = s.db.ExecContext(ctx, `
UPDATE interview_sessions SET status = ?, version = ?, data = ?
WHERE id = ? AND version = ?`,
			string(session.Status), next, string(raw), session.ID, session.Version)
	}
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if n == 0 {
		if session.Version == 0 {
			return domain.ErrVersionConflict
		}
		if _, err := s.Get(ctx, session.ID); err != nil {
			return err
		}
		return domain.ErrVersionConflict
	}
	session.Version = next
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM interview_sessions WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return unmarshalSession(raw)
}

func (s *SessionStore) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM interview_sessions WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := []*domain.Session{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session, err := unmarshalSession(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

func unmarshalSession(raw string) (*domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// applyPragmas configures SQLite for single-user use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultPath resolves the database file path:
// INTERVIEW_COACH_DB, then $XDG_DATA_HOME/interview-coach/sessions.db,
// then ~/.local/share/interview-coach/sessions.db.
func DefaultPath() (string, error) {
	if p := os.Getenv("INTERVIEW_COACH_DB"); p != "" {
		return p, ensureDir(p)
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	p := filepath.Join(dataHome, "interview-coach", "sessions.db")
	return p, ensureDir(p)
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
