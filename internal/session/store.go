package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoSession indicates no stored session exists; the caller should direct
// the user to `hustle-tui login`.
var ErrNoSession = errors.New("no stored session")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	access_token TEXT NOT NULL,
	refresh_token TEXT NOT NULL DEFAULT '',
	user_id INTEGER NOT NULL,
	username TEXT NOT NULL,
	saved_at TEXT NOT NULL
);
`

// Store persists the session in a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the session store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate session store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the session, replacing any previous one.
func (s *Store) Save(ctx context.Context, sess Session) error {
	if !sess.Valid() {
		return fmt.Errorf("refusing to save invalid session")
	}
	if sess.SavedAt.IsZero() {
		sess.SavedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, access_token, refresh_token, user_id, username, saved_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			user_id = excluded.user_id,
			username = excluded.username,
			saved_at = excluded.saved_at
	`,
		sess.AccessToken,
		sess.RefreshToken,
		sess.UserID,
		sess.Username,
		sess.SavedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored session, or ErrNoSession.
func (s *Store) Load(ctx context.Context) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, user_id, username, saved_at
		FROM sessions WHERE id = 1
	`)

	var sess Session
	var savedAt string
	err := row.Scan(&sess.AccessToken, &sess.RefreshToken, &sess.UserID, &sess.Username, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	if t, perr := time.Parse(time.RFC3339, savedAt); perr == nil {
		sess.SavedAt = t
	}
	return sess, nil
}

// Clear removes the stored session. Clearing an empty store is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
