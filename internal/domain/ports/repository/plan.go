package repository

import (
	"context"

	"ripplix/internal/domain/model"
)

// PlanRepository is the port for pricing plan persistence.
type PlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.PricingPlan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PricingPlan, error)
	// FindBySlug matches active plans only.
	FindBySlug(ctx context.Context, tx Tx, slug string) (*model.PricingPlan, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.PricingPlan, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.PricingPlan, error)
	// Delete refuses to remove a plan still referenced by users.
	Delete(ctx context.Context, tx Tx, id string) error
}
