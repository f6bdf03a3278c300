package memory

import (
	"context"
	"sync"

	"github.com/eventreg/registration-system/internal/core/domain"
)

// SessionStore keeps dialogue state in process memory. State is lost on
// restart, which only forces callers to restart their current dialogue.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]domain.Session)}
}

func (s *SessionStore) Get(_ context.Context, callerID int64) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[callerID]; ok {
		return sess, nil
	}
	return domain.NewSession(callerID), nil
}

func (s *SessionStore) Put(_ context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.CallerID] = sess
	return nil
}

func (s *SessionStore) Clear(_ context.Context, callerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, callerID)
	return nil
}
