package repository

import (
	"context"
	"time"
)

// NotificationMarker deduplicates notification dispatch across a run cycle.
// MarkIfFirst returns true exactly once per (userID, kind) within the TTL
// window; the mark is taken before dispatch so a crash cannot double-send.
type NotificationMarker interface {
	MarkIfFirst(ctx context.Context, userID, kind string, ttl time.Duration) (bool, error)
}
