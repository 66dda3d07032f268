package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/repository"
	"ripplix/internal/infra/metrics"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

// EntitlementUseCase answers capacity questions for the board surface. All
// checks are reads; a denial is a plain false, consumed by the caller to render
// an upgrade prompt. A user with no plan, or a deleted/inactive plan, is judged
// by the free plan's limits; if even the free plan is missing the answer is no.
type EntitlementUseCase interface {
	CanCreateBoard(ctx context.Context, user *model.User) (bool, error)
	CanAddItem(ctx context.Context, user *model.User, boardID string) (bool, error)
	CanShare(ctx context.Context, user *model.User) (bool, error)
}

type entitlementUC struct {
	plans   repository.PlanRepository
	boards  repository.BoardRepository
	catalog PlanCatalog
	log     *zerolog.Logger
}

func NewEntitlementUseCase(plans repository.PlanRepository, boards repository.BoardRepository, catalog PlanCatalog, logger *zerolog.Logger) *entitlementUC {
	ucLog := logger.With().Str("component", "EntitlementUseCase").Logger()
	return &entitlementUC{plans: plans, boards: boards, catalog: catalog, log: &ucLog}
}

// effectiveLimits resolves the limits the user is judged by, falling back to
// the free plan and finally to zero capacity (fail closed).
func (uc *entitlementUC) effectiveLimits(ctx context.Context, user *model.User) model.PlanLimits {
	if user != nil && user.Subscription.PlanID != nil {
		if plan, err := uc.plans.FindByID(ctx, repository.NoTX, *user.Subscription.PlanID); err == nil && plan.IsActive {
			return plan.Limits()
		}
	}
	if free, err := uc.catalog.FreePlan(ctx); err == nil {
		return free.Limits()
	}
	return model.PlanLimits{MaxBoards: model.Limited(0), MaxItemsPerBoard: model.Limited(0)}
}

func (uc *entitlementUC) CanCreateBoard(ctx context.Context, user *model.User) (bool, error) {
	limits := uc.effectiveLimits(ctx, user)
	if limits.MaxBoards.IsUnlimited() {
		return true, nil
	}
	count, err := uc.boards.CountByUser(ctx, repository.NoTX, user.ID)
	if err != nil {
		return false, err
	}
	ok := limits.MaxBoards.Allows(count)
	if !ok {
		metrics.IncEntitlementDenied("create_board")
	}
	return ok, nil
}

func (uc *entitlementUC) CanAddItem(ctx context.Context, user *model.User, boardID string) (bool, error) {
	limits := uc.effectiveLimits(ctx, user)
	if limits.MaxItemsPerBoard.IsUnlimited() {
		return true, nil
	}
	count, err := uc.boards.CountItems(ctx, repository.NoTX, boardID)
	if err != nil {
		return false, err
	}
	ok := limits.MaxItemsPerBoard.Allows(count)
	if !ok {
		metrics.IncEntitlementDenied("add_item")
	}
	return ok, nil
}

func (uc *entitlementUC) CanShare(ctx context.Context, user *model.User) (bool, error) {
	ok := uc.effectiveLimits(ctx, user).CanShare
	if !ok {
		metrics.IncEntitlementDenied("share")
	}
	return ok, nil
}
