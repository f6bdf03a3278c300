package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker filters redelivered webhook updates backed by Redis.
// Key format: dedup:update:<update_id>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this update id has already been accepted.
func (d *DedupChecker) IsDuplicate(ctx context.Context, updateID int64) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(updateID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this update has been accepted (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, updateID int64) error {
	return d.client.Set(ctx, d.key(updateID), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(updateID int64) string {
	return fmt.Sprintf("dedup:update:%d", updateID)
}
