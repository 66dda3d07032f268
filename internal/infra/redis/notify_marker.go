// File: internal/infra/redis/notify_marker.go
package redis

import (
	"context"
	"time"

	"ripplix/internal/domain/ports/repository"
)

// Ensure compile-time conformance
var _ repository.NotificationMarker = (*NotifyMarker)(nil)

// NotifyMarker deduplicates notification dispatch with a SETNX key per
// (user, kind). The TTL is the cycle window: once it lapses the next run may
// notify the user again.
type NotifyMarker struct {
	cli *Client
}

func NewNotifyMarker(c *Client) *NotifyMarker {
	return &NotifyMarker{cli: c}
}

func (m *NotifyMarker) MarkIfFirst(ctx context.Context, userID, kind string, ttl time.Duration) (bool, error) {
	key := "notify:" + kind + ":" + userID
	return m.cli.SetNX(ctx, key, time.Now().Unix(), ttl)
}
