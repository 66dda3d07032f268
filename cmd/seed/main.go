// File: cmd/seed/main.go
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"ripplix/internal/config"
	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/repository"
	pg "ripplix/internal/infra/db/postgres"
	"ripplix/internal/usecase"
)

func main() {
	cfg, err := config.LoadConfig("config.yaml", false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPostgresPlanRepo(pool)
	gwRepo := pg.NewPostgresGatewayRepo(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	payRepo := pg.NewPostgresPaymentRepo(pool)
	catalog := usecase.NewPlanCatalog(planRepo, cfg.Plans.FreeSlug)

	// If plans already exist, do nothing
	plans, err := catalog.List(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		return
	}

	seed := []struct {
		Slug     string
		Name     string
		Price    int64
		Period   model.BillingPeriod
		Boards   model.Capacity
		Items    model.Capacity
		CanShare bool
	}{
		{"visitor", "Visitor", 0, model.BillingPeriodFree, model.Limited(1), model.Limited(10), false},
		{"free-member", "Free Member", 0, model.BillingPeriodFree, model.Limited(3), model.Limited(50), false},
		{"pro-monthly", "Pro Monthly", 4_99, model.BillingPeriodMonthly, model.Unlimited(), model.Unlimited(), true},
		{"pro-yearly", "Pro Yearly", 49_99, model.BillingPeriodYearly, model.Unlimited(), model.Unlimited(), true},
		{"lifetime-pro", "Lifetime Pro", 149_99, model.BillingPeriodLifetime, model.Unlimited(), model.Unlimited(), true},
	}

	for i, s := range seed {
		p, err := model.NewPricingPlan(uuid.NewString(), s.Slug, s.Name, s.Price, s.Period, s.Boards, s.Items, s.CanShare)
		if err != nil {
			log.Fatalf("build plan %q: %v", s.Slug, err)
		}
		p.SortOrder = i
		if err := catalog.Save(ctx, p); err != nil {
			log.Fatalf("save plan %q: %v", s.Slug, err)
		}
		fmt.Printf("seeded plan: %s (id=%s, period=%s)\n", p.Slug, p.ID, p.BillingPeriod)
	}

	gw := &model.PaymentGateway{ID: uuid.NewString(), Slug: "stripe", Name: "Stripe", IsActive: true}
	if err := gwRepo.Save(ctx, repository.NoTX, gw); err != nil {
		log.Fatalf("save gateway: %v", err)
	}
	fmt.Printf("seeded gateway: %s (id=%s)\n", gw.Slug, gw.ID)

	// One demo subscriber with a completed payment, handy for paydebug runs.
	monthly, err := catalog.FindBySlug(ctx, "pro-monthly")
	if err != nil {
		log.Fatalf("resolve pro-monthly: %v", err)
	}
	now := time.Now()
	demo := &model.User{
		ID:        uuid.NewString(),
		Email:     "demo@ripplix.dev",
		Name:      "Demo Subscriber",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := demo.ApplyPlan(monthly, now, model.ComputeExpiry(monthly, now)); err != nil {
		log.Fatalf("apply plan: %v", err)
	}
	if err := userRepo.Save(ctx, repository.NoTX, demo); err != nil {
		log.Fatalf("save demo user: %v", err)
	}

	payment := &model.Payment{
		ID:            uuid.NewString(),
		TransactionID: ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		UserID:        demo.ID,
		PlanID:        monthly.ID,
		GatewayID:     gw.ID,
		AmountCents:   monthly.PriceCents,
		Currency:      monthly.Currency,
		Status:        model.PaymentStatusCompleted,
		PaidAt:        &now,
		CreatedAt:     now,
	}
	if err := payRepo.Save(ctx, repository.NoTX, payment); err != nil {
		log.Fatalf("save demo payment: %v", err)
	}
	fmt.Printf("seeded demo user %s with payment %s\n", demo.Email, payment.TransactionID)

	fmt.Println("Seeding complete.")
}
