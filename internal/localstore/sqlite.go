package localstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/verdinapp/verdin/internal/logging"
)

// DB is the SQLite-backed KV implementation.
type DB struct {
	mu        sync.Mutex
	db        *sql.DB
	sessionID string
	logger    zerolog.Logger
	closed    bool
}

// Open opens (and if needed creates) the local store at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to local store: %w", err)
	}

	store := &DB{db: db, logger: logging.Component("localstore")}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *DB) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		scope TEXT NOT NULL,
		key TEXT NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (scope, key)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create kv schema: %w", err)
	}
	return nil
}

// BindSession declares the active session. Session-scoped rows written by a
// different session are purged; rows from the same session survive, which
// is what lets a page-reload-equivalent restart recover its viewed set.
func (s *DB) BindSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.sessionID = sessionID

	res, err := s.db.Exec(`DELETE FROM kv WHERE scope = ? AND session_id != ?`, string(ScopeSession), sessionID)
	if err != nil {
		return fmt.Errorf("failed to purge stale session rows: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Debug().Int64("purged", n).Str("session_id", sessionID).Msg("dropped stale session storage")
	}
	return nil
}

// Get decodes the value under scope/key into v.
func (s *DB) Get(scope Scope, key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}

	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE scope = ? AND key = ?`, string(scope), key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s/%s: %w", scope, key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", scope, key, err)
	}
	return true, nil
}

// Set stores v as JSON under scope/key.
func (s *DB) Set(scope Scope, key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", scope, key, err)
	}

	sessionID := ""
	if scope == ScopeSession {
		sessionID = s.sessionID
	}

	_, err = s.db.Exec(`INSERT INTO kv (scope, key, session_id, value, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (scope, key) DO UPDATE SET
			session_id = excluded.session_id,
			value = excluded.value,
			updated_at = excluded.updated_at`,
		string(scope), key, sessionID, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", scope, key, err)
	}
	return nil
}

// Delete removes the value under scope/key. Deleting an absent key is fine.
func (s *DB) Delete(scope Scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, err := s.db.Exec(`DELETE FROM kv WHERE scope = ? AND key = ?`, string(scope), key); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", scope, key, err)
	}
	return nil
}

// Close releases the underlying database.
func (s *DB) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
