package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ripplix/internal/usecase"
)

// ReconcileWorker periodically audits completed payments against live
// subscription state. It reports drift but never mutates anything; repair
// stays an explicit operator action.
type ReconcileWorker struct {
	interval   time.Duration
	runTimeout time.Duration
	lookback   time.Duration
	reconUC    usecase.ReconcileUseCase
	log        *zerolog.Logger
}

func NewReconcileWorker(interval, runTimeout, lookback time.Duration, reconUC usecase.ReconcileUseCase, logger *zerolog.Logger) *ReconcileWorker {
	compLog := logger.With().Str("component", "ReconcileWorker").Logger()
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	return &ReconcileWorker{
		interval:   interval,
		runTimeout: runTimeout,
		lookback:   lookback,
		reconUC:    reconUC,
		log:        &compLog,
	}
}

func (w *ReconcileWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting reconcile worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping reconcile worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ReconcileWorker) tick(ctx context.Context) {
	runCtx := ctx
	if w.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, w.runTimeout)
		defer cancel()
	}
	since := time.Now().Add(-w.lookback)
	report, err := w.reconUC.Audit(runCtx, &since)
	if err != nil {
		w.log.Error().Err(err).Msg("payment audit failed")
		return
	}
	if len(report.Drifts) > 0 {
		w.log.Warn().
			Int("checked", report.Checked).
			Int("drifts", len(report.Drifts)).
			Msg("payment drift detected")
		return
	}
	w.log.Debug().Int("checked", report.Checked).Msg("payment audit clean")
}
