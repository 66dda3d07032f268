//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"ripplix/internal/domain"
	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/repository"
	"ripplix/internal/usecase"
)

// --- Mock use cases ---

type mockExpiryUC struct {
	usecase.ExpiryUseCase // Embed interface for forward compatibility
	Stats                 *model.SubscriptionStats
	SnapshotError         error
}

func (m *mockExpiryUC) Snapshot(ctx context.Context, now time.Time) (*model.SubscriptionStats, error) {
	if m.SnapshotError != nil {
		return nil, m.SnapshotError
	}
	return m.Stats, nil
}

type mockReconUC struct {
	usecase.ReconcileUseCase
	AuditResult  *usecase.AuditReport
	RepairResult *usecase.RepairReport
	AuditError   error
}

func (m *mockReconUC) Audit(ctx context.Context, since *time.Time) (*usecase.AuditReport, error) {
	if m.AuditError != nil {
		return nil, m.AuditError
	}
	return m.AuditResult, nil
}

func (m *mockReconUC) AuditUser(ctx context.Context, userID string) (*usecase.AuditReport, error) {
	return m.Audit(ctx, nil)
}

func (m *mockReconUC) Repair(ctx context.Context, drifts []usecase.Drift) (*usecase.RepairReport, error) {
	return m.RepairResult, nil
}

type mockEntitlementUC struct {
	AllowCreate bool
	AllowItem   bool
	AllowShare  bool
	CheckError  error
}

func (m *mockEntitlementUC) CanCreateBoard(ctx context.Context, user *model.User) (bool, error) {
	return m.AllowCreate, m.CheckError
}

func (m *mockEntitlementUC) CanAddItem(ctx context.Context, user *model.User, boardID string) (bool, error) {
	return m.AllowItem, m.CheckError
}

func (m *mockEntitlementUC) CanShare(ctx context.Context, user *model.User) (bool, error) {
	return m.AllowShare, m.CheckError
}

type mockCatalog struct {
	usecase.PlanCatalog
	Plans       []*model.PricingPlan
	DeleteError error
}

func (m *mockCatalog) List(ctx context.Context) ([]*model.PricingPlan, error) {
	return m.Plans, nil
}

func (m *mockCatalog) Save(ctx context.Context, plan *model.PricingPlan) error {
	m.Plans = append(m.Plans, plan)
	return nil
}

func (m *mockCatalog) Delete(ctx context.Context, id string) error {
	return m.DeleteError
}

type mockGatewayUC struct {
	Gateway *model.PaymentGateway
	Err     error
}

func (m *mockGatewayUC) Active(ctx context.Context) (*model.PaymentGateway, error) {
	return m.Gateway, m.Err
}

func (m *mockGatewayUC) List(ctx context.Context) ([]*model.PaymentGateway, error) {
	if m.Gateway == nil {
		return nil, nil
	}
	return []*model.PaymentGateway{m.Gateway}, nil
}

// --- Mock repositories ---

type mockUserRepo struct {
	repository.UserRepository
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo(users ...*model.User) *mockUserRepo {
	m := &mockUserRepo{users: map[string]*model.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

type mockBoardRepo struct {
	repository.BoardRepository
	mu     sync.Mutex
	saved  []*model.Board
	items  map[string][]string
	shared map[string]bool
}

func newMockBoardRepo() *mockBoardRepo {
	return &mockBoardRepo{items: map[string][]string{}, shared: map[string]bool{}}
}

func (m *mockBoardRepo) Save(ctx context.Context, tx repository.Tx, b *model.Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, b)
	return nil
}

func (m *mockBoardRepo) AddItem(ctx context.Context, tx repository.Tx, boardID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[boardID] = append(m.items[boardID], itemID)
	return nil
}

func (m *mockBoardRepo) SetShared(ctx context.Context, tx repository.Tx, boardID string, shared bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shared[boardID] = shared
	return nil
}
