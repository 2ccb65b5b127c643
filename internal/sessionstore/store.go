// Package sessionstore persists the client's session token across restarts
// as a single JSON record on disk, with lazy time-to-live expiry checked on
// read.
package sessionstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// TTL is how long a persisted session stays usable. A record older than
// this is treated as absent and removed on the next Get.
const TTL = 24 * time.Hour

// Session is the persisted record.
type Session struct {
	ID        string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Store reads and writes the session record at a fixed path.
type Store struct {
	path string
	now  func() time.Time
}

// New creates a Store backed by the given file path.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// NewWithClock creates a Store with an injected clock, for tests.
func NewWithClock(path string, now func() time.Time) *Store {
	return &Store{path: path, now: now}
}

// Get returns the persisted session, or false when none exists. An expired
// record counts as absent and is cleared as a side effect.
func (s *Store) Get() (Session, bool) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, false
	}
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("failed to read session record")
		return Session{}, false
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// A corrupt record is unusable; drop it.
		_ = s.Clear()
		return Session{}, false
	}

	if s.now().Sub(sess.CreatedAt) > TTL {
		_ = s.Clear()
		return Session{}, false
	}

	return sess, true
}

// Save writes the session record, creating parent directories as needed.
func (s *Store) Save(sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("sessionstore.Save: marshal: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("sessionstore.Save: mkdir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("sessionstore.Save: write: %w", err)
	}

	return nil
}

// Clear removes the session record. Removing an absent record is not an
// error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("sessionstore.Clear: %w", err)
	}
	return nil
}
