package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// DedupChecker provides decision idempotency checks backed by Redis.
// Key format: decision:<reimb_id>:<status>:<unix_timestamp>
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this exact decision has already been recorded.
func (d *DedupChecker) IsDuplicate(ctx context.Context, reimbID int64, status string, ts time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(reimbID, status, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this decision has been processed (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, reimbID int64, status string, ts time.Time) error {
	return d.client.Set(ctx, d.key(reimbID, status, ts), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(reimbID int64, status string, ts time.Time) string {
	return fmt.Sprintf("decision:%d:%s:%d", reimbID, status, ts.Unix())
}
