package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ripplix/internal/usecase"
)

// ExpiryWorker periodically downgrades users whose paid plans ran out.
type ExpiryWorker struct {
	interval   time.Duration
	runTimeout time.Duration
	expiryUC   usecase.ExpiryUseCase
	log        *zerolog.Logger
}

func NewExpiryWorker(interval, runTimeout time.Duration, expiryUC usecase.ExpiryUseCase, logger *zerolog.Logger) *ExpiryWorker {
	compLog := logger.With().Str("component", "ExpiryWorker").Logger()
	if interval <= 0 {
		interval = time.Hour
	}
	return &ExpiryWorker{
		interval:   interval,
		runTimeout: runTimeout,
		expiryUC:   expiryUC,
		log:        &compLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	// Run once on startup, then on every tick
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *ExpiryWorker) runOnce(ctx context.Context) {
	runCtx := ctx
	if w.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, w.runTimeout)
		defer cancel()
	}
	report, err := w.expiryUC.ProcessExpired(runCtx, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("expiry run failed")
		return
	}
	if report.Total > 0 {
		w.log.Info().
			Int("total", report.Total).
			Int("downgraded", report.Downgraded).
			Int("failed", report.Failed).
			Msg("expired subscriptions processed")
	}
	if _, err := w.expiryUC.Snapshot(runCtx, time.Now()); err != nil {
		w.log.Warn().Err(err).Msg("stats snapshot failed")
	}
}
