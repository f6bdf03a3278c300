// Package memory provides in-memory implementations of the persistence
// ports, honouring the same invariants as the MongoDB-backed ones. Used by
// unit tests and as the session fallback when Redis is not configured.
package memory

import (
	"context"
	"sync"

	"github.com/eventreg/registration-system/internal/core/domain"
)

// ParticipantRepository is a mutex-guarded in-memory participant store.
// Uniqueness checks and number allocation happen under one lock, which
// makes insert atomic the same way the unique indexes plus transaction do
// for the MongoDB store.
type ParticipantRepository struct {
	mu         sync.Mutex
	byCallerID map[int64]*domain.Participant
	byPhone    map[string]*domain.Participant
	ordered    []*domain.Participant
	nextNumber int64
}

func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{
		byCallerID: make(map[int64]*domain.Participant),
		byPhone:    make(map[string]*domain.Participant),
		nextNumber: 1,
	}
}

func (r *ParticipantRepository) FindByCallerID(_ context.Context, callerID int64) (*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byCallerID[callerID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ParticipantRepository) FindByPhone(_ context.Context, phone string) (*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byPhone[phone]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ParticipantRepository) Insert(_ context.Context, p *domain.Participant) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCallerID[p.CallerID]; exists {
		return 0, &domain.DuplicateError{Field: domain.DuplicateCallerID}
	}
	if _, exists := r.byPhone[p.Phone]; exists {
		return 0, &domain.DuplicateError{Field: domain.DuplicatePhone}
	}

	stored := *p
	stored.Number = r.nextNumber
	r.nextNumber++

	r.byCallerID[stored.CallerID] = &stored
	r.byPhone[stored.Phone] = &stored
	r.ordered = append(r.ordered, &stored)

	p.Number = stored.Number
	return stored.Number, nil
}

func (r *ParticipantRepository) ListInRange(_ context.Context, rng domain.Range) ([]domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Participant, 0, len(r.ordered))
	for _, p := range r.ordered {
		if inRange(p, rng) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *ParticipantRepository) CountInRange(_ context.Context, rng domain.Range) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, p := range r.ordered {
		if inRange(p, rng) {
			n++
		}
	}
	return n, nil
}

func (r *ParticipantRepository) WipeAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byCallerID = make(map[int64]*domain.Participant)
	r.byPhone = make(map[string]*domain.Participant)
	r.ordered = nil
	r.nextNumber = 1
	return nil
}

func inRange(p *domain.Participant, rng domain.Range) bool {
	if rng.From != nil && p.RegisteredAt.Before(*rng.From) {
		return false
	}
	if rng.To != nil && !p.RegisteredAt.Before(*rng.To) {
		return false
	}
	return true
}
