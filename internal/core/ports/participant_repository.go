package ports

import (
	"context"

	"github.com/eventreg/registration-system/internal/core/domain"
)

// ParticipantRepository defines persistence operations for participants.
//
// Lookups return (nil, nil) on miss: a missing record is a normal branch in
// every flow, not a failure. Insert is the single atomic commit point of a
// registration and must enforce both uniqueness constraints at the storage
// layer — under racing callers exactly one insert wins and the rest receive
// *domain.DuplicateError.
type ParticipantRepository interface {
	FindByCallerID(ctx context.Context, callerID int64) (*domain.Participant, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Participant, error)

	// Insert atomically assigns the next sequential number and persists p.
	// The assigned number is returned and also written back into p.Number.
	Insert(ctx context.Context, p *domain.Participant) (int64, error)

	// ListInRange returns participants registered within r, ascending by
	// number.
	ListInRange(ctx context.Context, r domain.Range) ([]domain.Participant, error)
	CountInRange(ctx context.Context, r domain.Range) (int64, error)

	// WipeAll atomically deletes every record and resets the number
	// sequence, so the next insert receives number 1.
	WipeAll(ctx context.Context) error
}
