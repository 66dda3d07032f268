package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier posts expiry reminders as JSON to an external endpoint,
// typically the mailer service that owns the actual user-facing message.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    *zerolog.Logger
}

func NewWebhookNotifier(url string, logger *zerolog.Logger) *WebhookNotifier {
	compLog := logger.With().Str("component", "WebhookNotifier").Logger()
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    &compLog,
	}
}

func (n *WebhookNotifier) Name() string { return "webhook" }

type expiringEvent struct {
	Event     string    `json:"event"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	DaysLeft  int       `json:"days_left"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (n *WebhookNotifier) NotifyExpiring(ctx context.Context, user *model.User, daysLeft int) error {
	ev := expiringEvent{
		Event:    "subscription.expiring",
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		DaysLeft: daysLeft,
	}
	if user.Subscription.ExpiresAt != nil {
		ev.ExpiresAt = *user.Subscription.ExpiresAt
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal expiring event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.log.Warn().Int("status", resp.StatusCode).Str("user_id", user.ID).Msg("webhook rejected notification")
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
