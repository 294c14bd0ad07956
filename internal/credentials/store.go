// Package credentials persists the session token and display name.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Credentials is a persisted session.
type Credentials struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// Store persists a single session. All methods are synchronous.
type Store interface {
	// Get returns the stored session, and false when none is stored
	// or it is incomplete.
	Get() (Credentials, bool)

	// Set replaces the stored session.
	Set(token, name string) error

	// Clear removes the stored session. Clearing an empty store is not an error.
	Clear() error
}

// FileStore keeps the session in a JSON file with mode 0600.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get implements Store. Unreadable or corrupt files read as empty.
func (s *FileStore) Get() (Credentials, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Credentials{}, false
	}
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, false
	}
	if c.Token == "" || c.Name == "" {
		return Credentials{}, false
	}
	return c, true
}

// Set implements Store.
func (s *FileStore) Set(token, name string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(Credentials{Token: token, Name: name}, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(s.path, data)
}

// writeFile replaces path with data through a 0600 temp file in the same
// directory, so an existing file never keeps looser permissions.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials

	// SetErr is returned by Set when non-nil.
	SetErr error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get implements Store.
func (m *MemoryStore) Get() (Credentials, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds.Token == "" || m.creds.Name == "" {
		return Credentials{}, false
	}
	return m.creds, true
}

// Set implements Store.
func (m *MemoryStore) Set(token, name string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{Token: token, Name: name}
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = Credentials{}
	return nil
}
