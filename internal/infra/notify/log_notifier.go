package notify

import (
	"context"

	"github.com/rs/zerolog"

	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*LogNotifier)(nil)

// LogNotifier writes reminders to the log instead of an external channel.
// Useful in development and as the fallback when no webhook is configured.
type LogNotifier struct {
	log *zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	compLog := logger.With().Str("component", "LogNotifier").Logger()
	return &LogNotifier{log: &compLog}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) NotifyExpiring(ctx context.Context, user *model.User, daysLeft int) error {
	n.log.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Int("days_left", daysLeft).
		Msg("subscription expiring soon")
	return nil
}
