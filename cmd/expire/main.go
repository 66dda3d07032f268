// File: cmd/expire/main.go
//
// One-shot expiry pass, the CLI twin of the scheduled worker. Intended for
// cron or manual operator runs:
//
//	expire -config config.yaml [-notify]
//
// Exit code is 0 even when individual users fail to downgrade; only a total
// failure (bad config, unreachable database, missing free plan) exits non-zero.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"ripplix/internal/config"
	"ripplix/internal/domain/ports/adapter"
	pg "ripplix/internal/infra/db/postgres"
	"ripplix/internal/infra/logging"
	"ripplix/internal/infra/notify"
	red "ripplix/internal/infra/redis"
	"ripplix/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	doNotify := flag.Bool("notify", false, "also send expiring-soon reminders")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, false)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.RunTimeout)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	userRepo := pg.NewPostgresUserRepo(pool)
	planRepo := pg.NewPostgresPlanRepo(pool)
	marker := red.NewNotifyMarker(redisClient)

	var notifier adapter.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, logger)
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	catalog := usecase.NewPlanCatalog(planRepo, cfg.Plans.FreeSlug)
	expiryUC := usecase.NewExpiryUseCase(
		userRepo, catalog, marker, notifier,
		cfg.Scheduler.Workers, cfg.Scheduler.ExpiringDays, cfg.Scheduler.NotifyCycleTTL,
		logger,
	)

	report, err := expiryUC.ProcessExpired(ctx, time.Now())
	if err != nil {
		logger.Error().Err(err).Msg("expiry run failed")
		os.Exit(1)
	}
	fmt.Printf("expired: %d, downgraded: %d, failed: %d\n", report.Total, report.Downgraded, report.Failed)

	if *doNotify {
		nr, err := expiryUC.NotifyExpiring(ctx, time.Now())
		if err != nil {
			logger.Error().Err(err).Msg("notify run failed")
			os.Exit(1)
		}
		fmt.Printf("expiring soon: %d, notified: %d, already notified: %d, failed: %d\n",
			nr.Candidates, nr.Sent, nr.Skipped, nr.Failed)
	}
}
