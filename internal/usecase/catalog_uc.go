package usecase

import (
	"context"
	"errors"
	"fmt"

	"ripplix/internal/domain"
	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/repository"
)

// DefaultFreePlanSlug is the catalog key of the downgrade target.
const DefaultFreePlanSlug = "free-member"

// Compile-time check
var _ PlanCatalog = (*planCatalog)(nil)

// PlanCatalog is the read-mostly registry of pricing plans. Lookups are pure;
// ErrNotFound means "no entitlement", never a crash.
type PlanCatalog interface {
	// FindBySlug resolves an active plan by its stable slug.
	FindBySlug(ctx context.Context, slug string) (*model.PricingPlan, error)
	// FreePlan resolves the configured free plan; ErrNoFreePlan when absent.
	FreePlan(ctx context.Context) (*model.PricingPlan, error)
	Get(ctx context.Context, id string) (*model.PricingPlan, error)
	List(ctx context.Context) ([]*model.PricingPlan, error)
	Save(ctx context.Context, plan *model.PricingPlan) error
	Delete(ctx context.Context, id string) error
}

type planCatalog struct {
	plans    repository.PlanRepository
	freeSlug string
}

func NewPlanCatalog(plans repository.PlanRepository, freeSlug string) *planCatalog {
	if freeSlug == "" {
		freeSlug = DefaultFreePlanSlug
	}
	return &planCatalog{plans: plans, freeSlug: freeSlug}
}

func (c *planCatalog) FindBySlug(ctx context.Context, slug string) (*model.PricingPlan, error) {
	if slug == "" {
		return nil, domain.ErrInvalidArgument
	}
	return c.plans.FindBySlug(ctx, repository.NoTX, slug)
}

func (c *planCatalog) FreePlan(ctx context.Context) (*model.PricingPlan, error) {
	p, err := c.plans.FindBySlug(ctx, repository.NoTX, c.freeSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNoFreePlan
		}
		return nil, fmt.Errorf("resolve free plan: %w", err)
	}
	return p, nil
}

func (c *planCatalog) Get(ctx context.Context, id string) (*model.PricingPlan, error) {
	return c.plans.FindByID(ctx, repository.NoTX, id)
}

func (c *planCatalog) List(ctx context.Context) ([]*model.PricingPlan, error) {
	return c.plans.ListAll(ctx, repository.NoTX)
}

func (c *planCatalog) Save(ctx context.Context, plan *model.PricingPlan) error {
	return c.plans.Save(ctx, repository.NoTX, plan)
}

func (c *planCatalog) Delete(ctx context.Context, id string) error {
	return c.plans.Delete(ctx, repository.NoTX, id)
}
