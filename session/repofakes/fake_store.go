// Package repofakes provides in-memory fakes for session storage, used in
// tests across the module.
package repofakes

import (
	"sync"

	"github.com/DinhTQSE/schoolmed-client/users"
)

// FakeStore is an in-memory credential store.
type FakeStore struct {
	mu    sync.Mutex
	token string
	user  *users.User

	TokenErr error // returned from Token when set
	UserErr  error // returned from User when set
	SaveErr  error // returned from Save when set
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

// Seed pre-populates the store, bypassing error injection.
func (s *FakeStore) Seed(token string, user *users.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

func (s *FakeStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TokenErr != nil {
		return "", s.TokenErr
	}
	return s.token, nil
}

func (s *FakeStore) User() (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UserErr != nil {
		return nil, s.UserErr
	}
	return s.user, nil
}

func (s *FakeStore) Save(token string, user *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.token = token
	s.user = user
	return nil
}

func (s *FakeStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}
