// File: cmd/paydebug/main.go
//
// Read-only payment drift inspector with an opt-in repair step:
//
//	paydebug -config config.yaml [-since 24h] [-apply] [user_id]
//
// Without flags it prints recent completed payments and any drift between a
// payment's plan and the user's live subscription. With -apply every drift is
// repaired; without it the operator is asked per drift.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ripplix/internal/config"
	pg "ripplix/internal/infra/db/postgres"
	"ripplix/internal/infra/logging"
	"ripplix/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	since := flag.Duration("since", 24*time.Hour, "lookback window for the audit")
	apply := flag.Bool("apply", false, "repair every drift without asking")
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

	userRepo := pg.NewPostgresUserRepo(pool)
	planRepo := pg.NewPostgresPlanRepo(pool)
	payRepo := pg.NewPostgresPaymentRepo(pool)
	txm := pg.NewTxManager(pool)

	reconUC := usecase.NewReconcileUseCase(payRepo, userRepo, planRepo, txm, logger)

	var report *usecase.AuditReport
	if userID := flag.Arg(0); userID != "" {
		report, err = reconUC.AuditUser(ctx, userID)
	} else {
		cutoff := time.Now().Add(-*since)
		report, err = reconUC.Audit(ctx, &cutoff)
	}
	if err != nil {
		logger.Error().Err(err).Msg("audit failed")
		os.Exit(1)
	}

	fmt.Printf("checked %d completed payments\n", report.Checked)
	if len(report.Drifts) == 0 {
		fmt.Println("no drift found")
		return
	}

	for _, d := range report.Drifts {
		actual := "<none>"
		if d.ActualPlanID != nil {
			actual = *d.ActualPlanID
		}
		paid := "<unknown>"
		if d.PaidAt != nil {
			paid = d.PaidAt.Format(time.RFC3339)
		}
		fmt.Printf("drift: payment=%s txn=%s user=%s expected_plan=%s actual_plan=%s paid_at=%s\n",
			d.PaymentID, d.TransactionID, d.UserID, d.ExpectedPlanID, actual, paid)
	}

	toRepair := report.Drifts
	if !*apply {
		toRepair = confirmEach(report.Drifts)
	}
	if len(toRepair) == 0 {
		fmt.Println("nothing selected for repair")
		return
	}

	rep, err := reconUC.Repair(ctx, toRepair)
	if err != nil {
		logger.Error().Err(err).Msg("repair failed")
		os.Exit(1)
	}
	fmt.Printf("repair: attempted=%d repaired=%d failed=%d\n", rep.Attempted, rep.Repaired, rep.Failed)
}

// confirmEach asks y/n on stdin for every drift and returns the accepted ones.
func confirmEach(drifts []usecase.Drift) []usecase.Drift {
	reader := bufio.NewReader(os.Stdin)
	var out []usecase.Drift
	for _, d := range drifts {
		fmt.Printf("repair payment %s for user %s? [y/N] ", d.PaymentID, d.UserID)
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.EqualFold(strings.TrimSpace(line), "y") {
			out = append(out, d)
		}
	}
	return out
}
