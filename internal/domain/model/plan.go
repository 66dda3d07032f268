package model

import (
	"time"

	"ripplix/internal/domain"
)

type BillingPeriod string

const (
	BillingPeriodFree     BillingPeriod = "free"
	BillingPeriodMonthly  BillingPeriod = "monthly"
	BillingPeriodYearly   BillingPeriod = "yearly"
	BillingPeriodLifetime BillingPeriod = "lifetime"
)

// Expires reports whether subscriptions on this billing period carry an expiry date.
func (b BillingPeriod) Expires() bool {
	return b == BillingPeriodMonthly || b == BillingPeriodYearly
}

// PricingPlan is a catalog entry users subscribe to. The slug is the stable
// key referenced from code ("free-member", "pro-monthly", ...); rows are edited
// by administrators and never deleted while referenced.
type PricingPlan struct {
	ID                     string
	Slug                   string
	Name                   string
	PriceCents             int64
	Currency               string
	BillingPeriod          BillingPeriod
	MaxBoards              Capacity
	MaxItemsPerBoard       Capacity
	CanShare               bool
	StudentDiscountPercent *int
	IsActive               bool
	SortOrder              int
	CreatedAt              time.Time
}

func (p *PricingPlan) IsZero() bool { return p == nil || p.ID == "" }

// PlanLimits groups the capacity answers the entitlement checks consume.
type PlanLimits struct {
	MaxBoards        Capacity
	MaxItemsPerBoard Capacity
	CanShare         bool
}

func (p *PricingPlan) Limits() PlanLimits {
	return PlanLimits{
		MaxBoards:        p.MaxBoards,
		MaxItemsPerBoard: p.MaxItemsPerBoard,
		CanShare:         p.CanShare,
	}
}

// NewPricingPlan validates and constructs a plan.
func NewPricingPlan(id, slug, name string, priceCents int64, period BillingPeriod, maxBoards, maxItems Capacity, canShare bool) (*PricingPlan, error) {
	if id == "" || slug == "" || name == "" || priceCents < 0 {
		return nil, domain.ErrInvalidArgument
	}
	switch period {
	case BillingPeriodFree, BillingPeriodMonthly, BillingPeriodYearly, BillingPeriodLifetime:
	default:
		return nil, domain.ErrInvalidArgument
	}
	return &PricingPlan{
		ID:               id,
		Slug:             slug,
		Name:             name,
		PriceCents:       priceCents,
		Currency:         "USD",
		BillingPeriod:    period,
		MaxBoards:        maxBoards,
		MaxItemsPerBoard: maxItems,
		CanShare:         canShare,
		IsActive:         true,
		CreatedAt:        time.Now(),
	}, nil
}

// ComputeExpiry returns when a subscription to the plan paid at paidAt runs
// out. Free and lifetime plans never expire, so the result is nil.
func ComputeExpiry(plan *PricingPlan, paidAt time.Time) *time.Time {
	switch plan.BillingPeriod {
	case BillingPeriodMonthly:
		t := paidAt.AddDate(0, 1, 0)
		return &t
	case BillingPeriodYearly:
		t := paidAt.AddDate(1, 0, 0)
		return &t
	default:
		return nil
	}
}
