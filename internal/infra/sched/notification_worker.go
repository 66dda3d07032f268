package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ripplix/internal/usecase"
)

// NotificationWorker reminds users whose paid plans expire soon.
type NotificationWorker struct {
	interval   time.Duration
	runTimeout time.Duration
	expiryUC   usecase.ExpiryUseCase
	log        *zerolog.Logger
}

func NewNotificationWorker(interval, runTimeout time.Duration, expiryUC usecase.ExpiryUseCase, logger *zerolog.Logger) *NotificationWorker {
	compLog := logger.With().Str("component", "NotificationWorker").Logger()
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &NotificationWorker{
		interval:   interval,
		runTimeout: runTimeout,
		expiryUC:   expiryUC,
		log:        &compLog,
	}
}

func (w *NotificationWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting notification worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping notification worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCheck(ctx)
		}
	}
}

func (w *NotificationWorker) runCheck(ctx context.Context) {
	runCtx := ctx
	if w.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, w.runTimeout)
		defer cancel()
	}
	report, err := w.expiryUC.NotifyExpiring(runCtx, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("notification check failed")
		return
	}
	if report.Sent > 0 {
		w.log.Info().Int("count", report.Sent).Int("skipped", report.Skipped).Msg("expiry notifications sent")
	}
}
