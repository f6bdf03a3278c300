package memory

import (
	"context"
	"sync"
	"time"
)

const dedupTTL = time.Hour

// DedupChecker is the in-process fallback for the Redis-backed checker.
// Entries expire lazily on lookup; protection does not survive a restart.
type DedupChecker struct {
	mu   sync.Mutex
	seen map[int64]time.Time
	now  func() time.Time
}

func NewDedupChecker() *DedupChecker {
	return &DedupChecker{
		seen: make(map[int64]time.Time),
		now:  time.Now,
	}
}

// IsDuplicate reports whether this update id has already been accepted.
func (d *DedupChecker) IsDuplicate(_ context.Context, updateID int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	at, ok := d.seen[updateID]
	if !ok {
		return false, nil
	}
	if d.now().Sub(at) > dedupTTL {
		delete(d.seen, updateID)
		return false, nil
	}
	return true, nil
}

// Mark records that this update has been accepted.
func (d *DedupChecker) Mark(_ context.Context, updateID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[updateID] = d.now()
	return nil
}
