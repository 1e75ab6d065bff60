package session

import (
	"context"
	"sync"
)

// TokenStore persists the access token across process restarts.
// Load reports (token, found, error); a miss is not an error.
type TokenStore interface {
	Save(ctx context.Context, tok AccessToken) error
	Load(ctx context.Context) (AccessToken, bool, error)
	Clear(ctx context.Context) error
}

// MemoryStore keeps the token in process memory. The default when no
// external store is configured.
type MemoryStore struct {
	mu  sync.Mutex
	tok AccessToken
	set bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, tok AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = tok
	s.set = true
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (AccessToken, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return AccessToken{}, false, nil
	}
	return s.tok, true, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = AccessToken{}
	s.set = false
	return nil
}
