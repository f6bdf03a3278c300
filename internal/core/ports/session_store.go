package ports

import (
	"context"

	"github.com/eventreg/registration-system/internal/core/domain"
)

// SessionStore keeps per-caller dialogue state between turns. Sessions for
// different callers are fully independent; state loss is tolerable and only
// restarts the caller's current dialogue.
type SessionStore interface {
	// Get returns the caller's session, or an idle session when none is
	// stored.
	Get(ctx context.Context, callerID int64) (domain.Session, error)
	Put(ctx context.Context, s domain.Session) error
	Clear(ctx context.Context, callerID int64) error
}
