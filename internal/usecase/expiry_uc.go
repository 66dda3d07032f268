package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/adapter"
	"ripplix/internal/domain/ports/repository"
	"ripplix/internal/infra/metrics"
	"ripplix/internal/infra/worker"
)

const notificationKindExpiring = "expiring"

// Compile-time check
var _ ExpiryUseCase = (*expiryUC)(nil)

// ExpiryReport aggregates one downgrade run. Downgraded+Failed always equals
// Total; per-user failures never abort the run.
type ExpiryReport struct {
	Total      int
	Downgraded int
	Failed     int
}

// NotifyReport aggregates one notification pass.
type NotifyReport struct {
	Candidates int
	Sent       int
	Skipped    int
	Failed     int
}

type ExpiryUseCase interface {
	// ProcessExpired downgrades every user whose paid plan ran out before now.
	// It returns an error only when the candidate set cannot be queried or no
	// free plan exists to downgrade into.
	ProcessExpired(ctx context.Context, now time.Time) (ExpiryReport, error)

	// Snapshot computes the subscription analytics as of now, independently of
	// any processing.
	Snapshot(ctx context.Context, now time.Time) (*model.SubscriptionStats, error)

	// NotifyExpiring dispatches at most one expiry warning per user per run
	// cycle. Dispatch is best effort; failures are counted, not retried.
	NotifyExpiring(ctx context.Context, now time.Time) (NotifyReport, error)
}

type expiryUC struct {
	users    repository.UserRepository
	catalog  PlanCatalog
	marker   repository.NotificationMarker
	notifier adapter.Notifier

	workers       int
	thresholdDays int
	cycleTTL      time.Duration

	log *zerolog.Logger
}

func NewExpiryUseCase(users repository.UserRepository, catalog PlanCatalog, marker repository.NotificationMarker, notifier adapter.Notifier, workers, thresholdDays int, cycleTTL time.Duration, logger *zerolog.Logger) *expiryUC {
	if workers <= 0 {
		workers = 1
	}
	if thresholdDays <= 0 {
		thresholdDays = 7
	}
	if cycleTTL <= 0 {
		cycleTTL = 20 * time.Hour
	}
	ucLog := logger.With().Str("component", "ExpiryUseCase").Logger()
	return &expiryUC{
		users:         users,
		catalog:       catalog,
		marker:        marker,
		notifier:      notifier,
		workers:       workers,
		thresholdDays: thresholdDays,
		cycleTTL:      cycleTTL,
		log:           &ucLog,
	}
}

func (uc *expiryUC) ProcessExpired(ctx context.Context, now time.Time) (ExpiryReport, error) {
	freePlan, err := uc.catalog.FreePlan(ctx)
	if err != nil {
		// Without a downgrade target the whole run must stop loudly.
		return ExpiryReport{}, err
	}

	candidates, err := uc.users.FindExpired(ctx, repository.NoTX, now, 0)
	if err != nil {
		return ExpiryReport{}, fmt.Errorf("select expired users: %w", err)
	}

	var downgraded, failed atomic.Int64
	pool := worker.NewPool(uc.workers)
	for _, u := range candidates {
		u := u
		pool.Go(func() {
			if err := uc.downgradeOne(ctx, u, freePlan, now); err != nil {
				failed.Add(1)
				uc.log.Error().Err(err).Str("user_id", u.ID).Msg("downgrade failed; user left unmodified")
				return
			}
			downgraded.Add(1)
		})
	}
	pool.Wait()

	report := ExpiryReport{
		Total:      len(candidates),
		Downgraded: int(downgraded.Load()),
		Failed:     int(failed.Load()),
	}
	metrics.AddDowngraded(report.Downgraded)
	uc.log.Info().Int("total", report.Total).Int("downgraded", report.Downgraded).Int("failed", report.Failed).Msg("expiry run finished")
	return report, nil
}

// downgradeOne routes through the single ApplyPlan mutation point and persists
// the full row: the user is either fully downgraded or left untouched.
func (uc *expiryUC) downgradeOne(ctx context.Context, u *model.User, freePlan *model.PricingPlan, now time.Time) error {
	if err := u.DowngradeToFree(freePlan, now); err != nil {
		return err
	}
	return uc.users.Save(ctx, repository.NoTX, u)
}

func (uc *expiryUC) Snapshot(ctx context.Context, now time.Time) (*model.SubscriptionStats, error) {
	stats, err := uc.users.SubscriptionStats(ctx, repository.NoTX, now)
	if err != nil {
		return nil, fmt.Errorf("subscription stats: %w", err)
	}
	metrics.SetSubscriptionStats(stats)
	return stats, nil
}

func (uc *expiryUC) NotifyExpiring(ctx context.Context, now time.Time) (NotifyReport, error) {
	candidates, err := uc.users.FindExpiring(ctx, repository.NoTX, now, uc.thresholdDays)
	if err != nil {
		return NotifyReport{}, fmt.Errorf("select expiring users: %w", err)
	}

	report := NotifyReport{Candidates: len(candidates)}
	for _, u := range candidates {
		// Mark before dispatch: at most one attempt per user per cycle.
		first, err := uc.marker.MarkIfFirst(ctx, u.ID, notificationKindExpiring, uc.cycleTTL)
		if err != nil {
			report.Failed++
			uc.log.Error().Err(err).Str("user_id", u.ID).Msg("notification dedupe check failed")
			continue
		}
		if !first {
			report.Skipped++
			continue
		}
		daysLeft := 0
		if d := u.Subscription.DaysUntilExpiry(now); d != nil {
			daysLeft = *d
		}
		if err := uc.notifier.NotifyExpiring(ctx, u, daysLeft); err != nil {
			report.Failed++
			uc.log.Error().Err(err).Str("user_id", u.ID).Str("notifier", uc.notifier.Name()).Msg("notification dispatch failed")
			continue
		}
		report.Sent++
	}
	metrics.AddExpiryNotifications(report.Sent)
	return report, nil
}
