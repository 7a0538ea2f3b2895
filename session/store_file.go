package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/DinhTQSE/schoolmed-client/users"
)

// fileState is the on-disk layout. The user slot stays a raw message so a
// corrupt user record does not take the token down with it.
type fileState struct {
	Token string          `json:"token,omitempty"`
	User  json.RawMessage `json:"user,omitempty"`
}

// FileStore persists credentials as a JSON file. The file is re-read on every
// access so token rotation by another process of the same installation is
// picked up without restarting.
type FileStore struct {
	path string

	mu sync.Mutex
}

// NewFileStore creates a FileStore at path. The file itself is created lazily
// on the first Save.
func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("credential file path is required")
	}

	return &FileStore{path: path}, nil
}

func (s *FileStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return "", err
	}
	return state.Token, nil
}

func (s *FileStore) User() (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return nil, err
	}
	if len(state.User) == 0 {
		return nil, nil
	}

	var user users.User
	if err := json.Unmarshal(state.User, &user); err != nil {
		// Corrupt cached record: behave as if no cache existed.
		return nil, nil
	}
	return &user, nil
}

func (s *FileStore) Save(token string, user *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := fileState{Token: token}
	if user != nil {
		encoded, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encode user record: %w", err)
		}
		state.User = encoded
	}
	return s.persistLocked(state)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

func (s *FileStore) load() (fileState, error) {
	var state fileState

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, fmt.Errorf("read credential file: %w", err)
	}
	if len(b) == 0 {
		return state, nil
	}

	if err := json.Unmarshal(b, &state); err != nil {
		// Corrupt file: treat the whole store as empty rather than wedging
		// every session operation.
		return fileState{}, nil
	}
	return state, nil
}

func (s *FileStore) persistLocked(state fileState) error {
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir credential dir: %w", err)
	}
	// Credentials: keep the file owner-only.
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}
