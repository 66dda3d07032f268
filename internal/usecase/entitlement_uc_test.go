//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/repository"
	"ripplix/internal/usecase"
)

func TestEntitlementUseCase_CanCreateBoard(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	t.Run("unlimited plan allows any board count", func(t *testing.T) {
		// --- Arrange ---
		plans, boards := NewMockPlanRepo(), NewMockBoardRepo()
		pro := testPlan("lifetime-pro", model.BillingPeriodLifetime)
		pro.MaxBoards = model.Unlimited()
		_ = plans.Save(ctx, nil, pro)
		u := testUserOnPlan("user-1", pro, now)

		catalog := usecase.NewPlanCatalog(plans, "free-member")
		uc := usecase.NewEntitlementUseCase(plans, boards, catalog, testLogger)

		for _, count := range []int{0, 1, 1 << 20} {
			count := count
			boards.CountByUserFunc = func(ctx context.Context, tx repository.Tx, userID string) (int, error) {
				return count, nil
			}
			// --- Act / Assert ---
			ok, err := uc.CanCreateBoard(ctx, u)
			if err != nil {
				t.Fatalf("count=%d: %v", count, err)
			}
			if !ok {
				t.Errorf("unlimited plan denied at count %d", count)
			}
		}
	})

	t.Run("limited plan denies at the limit", func(t *testing.T) {
		// --- Arrange ---
		plans, boards := NewMockPlanRepo(), NewMockBoardRepo()
		free := testPlan("free-member", model.BillingPeriodFree)
		free.MaxBoards = model.Limited(3)
		_ = plans.Save(ctx, nil, free)
		u := testUserOnPlan("user-1", free, now)
		for i := 0; i < 3; i++ {
			b, _ := model.NewBoard(string(rune('a'+i)), "user-1", "board")
			_ = boards.Save(ctx, nil, b)
		}

		catalog := usecase.NewPlanCatalog(plans, "free-member")
		uc := usecase.NewEntitlementUseCase(plans, boards, catalog, testLogger)

		// --- Act ---
		ok, err := uc.CanCreateBoard(ctx, u)

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if ok {
			t.Error("expected denial at the board limit")
		}
	})

	t.Run("user with no plan falls back to free plan limits", func(t *testing.T) {
		// --- Arrange ---
		plans, boards := NewMockPlanRepo(), NewMockBoardRepo()
		free := testPlan("free-member", model.BillingPeriodFree)
		free.MaxBoards = model.Limited(3)
		_ = plans.Save(ctx, nil, free)
		u, _ := model.NewUser("user-1", "u@example.com", "U") // no plan assigned

		catalog := usecase.NewPlanCatalog(plans, "free-member")
		uc := usecase.NewEntitlementUseCase(plans, boards, catalog, testLogger)

		// --- Act ---
		ok, err := uc.CanCreateBoard(ctx, u)

		// --- Assert ---
		if err != nil {
			t.Fatalf("fallback must not raise, got: %v", err)
		}
		if !ok {
			t.Error("expected free-plan limits to allow the first board")
		}
	})

	t.Run("deleted plan reference falls back to free plan limits", func(t *testing.T) {
		// --- Arrange ---
		plans, boards := NewMockPlanRepo(), NewMockBoardRepo()
		free := testPlan("free-member", model.BillingPeriodFree)
		free.MaxBoards = model.Limited(3)
		_ = plans.Save(ctx, nil, free)
		u, _ := model.NewUser("user-1", "u@example.com", "U")
		gone := "plan-gone"
		u.Subscription.PlanID = &gone

		catalog := usecase.NewPlanCatalog(plans, "free-member")
		uc := usecase.NewEntitlementUseCase(plans, boards, catalog, testLogger)

		// --- Act ---
		ok, err := uc.CanCreateBoard(ctx, u)

		// --- Assert ---
		if err != nil {
			t.Fatalf("fallback must not raise, got: %v", err)
		}
		if !ok {
			t.Error("expected free-plan limits to apply")
		}
	})

	t.Run("fails closed when even the free plan is missing", func(t *testing.T) {
		// --- Arrange ---
		plans, boards := NewMockPlanRepo(), NewMockBoardRepo()
		u, _ := model.NewUser("user-1", "u@example.com", "U")

		catalog := usecase.NewPlanCatalog(plans, "free-member")
		uc := usecase.NewEntitlementUseCase(plans, boards, catalog, testLogger)

		// --- Act ---
		ok, err := uc.CanCreateBoard(ctx, u)

		// --- Assert ---
		if err != nil {
			t.Fatalf("fail-closed must not raise, got: %v", err)
		}
		if ok {
			t.Error("expected denial with no resolvable limits")
		}
	})
}

func TestEntitlementUseCase_CanAddItem(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	t.Run("denies once the board is full", func(t *testing.T) {
		// --- Arrange ---
		plans, boards := NewMockPlanRepo(), NewMockBoardRepo()
		free := testPlan("free-member", model.BillingPeriodFree)
		free.MaxItemsPerBoard = model.Limited(2)
		_ = plans.Save(ctx, nil, free)
		u := testUserOnPlan("user-1", free, now)
		b, _ := model.NewBoard("board-1", "user-1", "clips")
		_ = boards.Save(ctx, nil, b)
		_ = boards.AddItem(ctx, nil, "board-1", "lib-1")
		_ = boards.AddItem(ctx, nil, "board-1", "lib-2")

		catalog := usecase.NewPlanCatalog(plans, "free-member")
		uc := usecase.NewEntitlementUseCase(plans, boards, catalog, testLogger)

		// --- Act ---
		ok, err := uc.CanAddItem(ctx, u, "board-1")

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if ok {
			t.Error("expected denial on a full board")
		}
	})
}

func TestEntitlementUseCase_CanShare(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()
	now := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	t.Run("mirrors the plan's sharing flag", func(t *testing.T) {
		// --- Arrange ---
		plans, boards := NewMockPlanRepo(), NewMockBoardRepo()
		pro := testPlan("pro-monthly", model.BillingPeriodMonthly)
		pro.CanShare = true
		free := testPlan("free-member", model.BillingPeriodFree)
		_ = plans.Save(ctx, nil, pro)
		_ = plans.Save(ctx, nil, free)

		catalog := usecase.NewPlanCatalog(plans, "free-member")
		uc := usecase.NewEntitlementUseCase(plans, boards, catalog, testLogger)

		// --- Act / Assert ---
		if ok, _ := uc.CanShare(ctx, testUserOnPlan("user-pro", pro, now)); !ok {
			t.Error("pro plan should allow sharing")
		}
		if ok, _ := uc.CanShare(ctx, testUserOnPlan("user-free", free, now)); ok {
			t.Error("free plan should not allow sharing")
		}
	})
}
