package store

import "sync"

// MemorySessionStore keeps session tokens in-memory (single instance only).
type MemorySessionStore struct {
	mu   sync.Mutex
	sess map[string]uint
}

// NewMemorySessionStore builds an in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sess: make(map[string]uint)}
}

// NewSession creates a session token bound to a user.
func (s *MemorySessionStore) NewSession(userID uint) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := newToken()
	s.sess[token] = userID
	return token, nil
}

// GetUserIDByToken resolves a session token.
func (s *MemorySessionStore) GetUserIDByToken(token string) (uint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sess[token]
	return id, ok, nil
}

// DeleteSession removes a session token.
func (s *MemorySessionStore) DeleteSession(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sess, token)
	return nil
}
