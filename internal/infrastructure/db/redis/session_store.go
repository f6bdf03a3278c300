package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eventreg/registration-system/internal/core/domain"
)

// sessionTTL bounds how long an abandoned dialogue survives. Expiry only
// forces the caller to restart the current flow.
const sessionTTL = 24 * time.Hour

// SessionStore keeps per-caller dialogue state in Redis as JSON values.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Get returns the caller's session, or an idle one when none is stored.
func (s *SessionStore) Get(ctx context.Context, callerID int64) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(callerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewSession(callerID), nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("session get: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// A corrupt value behaves like no session: the dialogue restarts.
		return domain.NewSession(callerID), nil
	}
	return sess, nil
}

func (s *SessionStore) Put(ctx context.Context, sess domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.CallerID), raw, sessionTTL).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear(ctx context.Context, callerID int64) error {
	if err := s.client.Del(ctx, s.key(callerID)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

func (s *SessionStore) key(callerID int64) string {
	return fmt.Sprintf("session:%d", callerID)
}
