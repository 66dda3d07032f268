package adapter

import (
	"context"

	"ripplix/internal/domain/model"
)

// Notifier dispatches user-facing notifications. Dispatch is best effort:
// callers count failures but never retry within a run.
type Notifier interface {
	Name() string
	NotifyExpiring(ctx context.Context, user *model.User, daysLeft int) error
}
