// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ripplix/internal/config"
	"ripplix/internal/domain/ports/adapter"
	pg "ripplix/internal/infra/db/postgres"
	"ripplix/internal/infra/logging"
	"ripplix/internal/infra/metrics"
	"ripplix/internal/infra/notify"
	red "ripplix/internal/infra/redis"
	"ripplix/internal/infra/sched"
	"ripplix/internal/infra/web"
	"ripplix/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	marker := red.NewNotifyMarker(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	planRepo := pg.NewPostgresPlanRepo(pool)
	payRepo := pg.NewPostgresPaymentRepo(pool)
	gwRepo := pg.NewPostgresGatewayRepo(pool)
	boardRepo := pg.NewPostgresBoardRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- Notifier ----
	var notifier adapter.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, logger)
	} else {
		notifier = notify.NewLogNotifier(logger)
	}
	logger.Info().Str("notifier", notifier.Name()).Msg("notifier selected")

	// ---- Use cases ----
	catalog := usecase.NewPlanCatalog(planRepo, cfg.Plans.FreeSlug)
	gatewayUC := usecase.NewGatewayUseCase(gwRepo)
	expiryUC := usecase.NewExpiryUseCase(
		userRepo, catalog, marker, notifier,
		cfg.Scheduler.Workers, cfg.Scheduler.ExpiringDays, cfg.Scheduler.NotifyCycleTTL,
		logger,
	)
	reconUC := usecase.NewReconcileUseCase(payRepo, userRepo, planRepo, txm, logger)
	entUC := usecase.NewEntitlementUseCase(planRepo, boardRepo, catalog, logger)

	// ---- Background workers ----
	expiryWorker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryInterval, cfg.Scheduler.RunTimeout, expiryUC, logger)
	notifyWorker := sched.NewNotificationWorker(cfg.Scheduler.NotifyInterval, cfg.Scheduler.RunTimeout, expiryUC, logger)
	reconWorker := sched.NewReconcileWorker(cfg.Scheduler.ReconcileInterval, cfg.Scheduler.RunTimeout, cfg.Scheduler.ReconcileLookback, reconUC, logger)
	go func() { _ = expiryWorker.Run(ctx) }()
	go func() { _ = notifyWorker.Run(ctx) }()
	go func() { _ = reconWorker.Run(ctx) }()

	// ---- Admin API ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
	srv := web.NewServer(catalog, expiryUC, reconUC, entUC, gatewayUC, userRepo, boardRepo, auth, cfg.Admin.APIKey, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("admin api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
