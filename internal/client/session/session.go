// Package session persists the CLI's login state between invocations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/filex"
)

const fileName = "session.json"

// Session is what a successful login leaves behind.
type Session struct {
	JWT  string         `json:"jwt"`
	User client.Profile `json:"user"`
}

// Store reads and writes a single session file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath is <user config dir>/taskkeeper/session.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "taskkeeper", fileName), nil
}

func (s *Store) Path() string {
	return s.path
}

// Load returns client.ErrNotLoggedIn when no session has been saved.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, client.ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	sess := &Session{}
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.JWT == "" {
		return nil, client.ErrNotLoggedIn
	}
	return sess, nil
}

func (s *Store) Save(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return filex.WriteFileAtomic(s.path, data, 0o600)
}

// Clear removes the session file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
