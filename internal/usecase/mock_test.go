//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ripplix/internal/domain"
	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/adapter"
	"ripplix/internal/domain/ports/repository"
)

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu   sync.Mutex
	data map[string]*model.User // by id

	SaveFunc              func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc          func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
	FindExpiredFunc       func(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.User, error)
	FindExpiringFunc      func(ctx context.Context, tx repository.Tx, now time.Time, withinDays int) ([]*model.User, error)
	SubscriptionStatsFunc func(ctx context.Context, tx repository.Tx, now time.Time) (*model.SubscriptionStats, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{data: map[string]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	r.data[u.ID] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.data[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.data {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) FindExpired(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.User, error) {
	if r.FindExpiredFunc != nil {
		return r.FindExpiredFunc(ctx, tx, now, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, u := range r.data {
		if u.Subscription.IsExpired(now) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockUserRepo) FindExpiring(ctx context.Context, tx repository.Tx, now time.Time, withinDays int) ([]*model.User, error) {
	if r.FindExpiringFunc != nil {
		return r.FindExpiringFunc(ctx, tx, now, withinDays)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, u := range r.data {
		if u.Subscription.ExpiresSoon(now, withinDays) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockUserRepo) SubscriptionStats(ctx context.Context, tx repository.Tx, now time.Time) (*model.SubscriptionStats, error) {
	if r.SubscriptionStatsFunc != nil {
		return r.SubscriptionStatsFunc(ctx, tx, now)
	}
	return &model.SubscriptionStats{}, nil
}

func (r *MockUserRepo) CountOnPlan(ctx context.Context, tx repository.Tx, planID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cnt := 0
	for _, u := range r.data {
		if u.Subscription.PlanID != nil && *u.Subscription.PlanID == planID {
			cnt++
		}
	}
	return cnt, nil
}

// Get returns the stored user without the FindByIDFunc override, for asserts.
func (r *MockUserRepo) Get(id string) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.data[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

// ---- Mock PlanRepository ----

type MockPlanRepo struct {
	mu   sync.Mutex
	data map[string]*model.PricingPlan // by id

	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id string) (*model.PricingPlan, error)
	FindBySlugFunc func(ctx context.Context, tx repository.Tx, slug string) (*model.PricingPlan, error)
	DeleteFunc     func(ctx context.Context, tx repository.Tx, id string) error
}

var _ repository.PlanRepository = (*MockPlanRepo)(nil)

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{data: map[string]*model.PricingPlan{}}
}

func (r *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.PricingPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PricingPlan, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPlanRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.PricingPlan, error) {
	if r.FindBySlugFunc != nil {
		return r.FindBySlugFunc(ctx, tx, slug)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.data {
		if p.Slug == slug && p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockPlanRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.PricingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PricingPlan
	for _, p := range r.data {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.PricingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PricingPlan
	for _, p := range r.data {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockPlanRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	if r.DeleteFunc != nil {
		return r.DeleteFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu   sync.Mutex
	data map[string]*model.Payment // by id

	FindByIDFunc      func(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error)
	ListCompletedFunc func(ctx context.Context, tx repository.Tx, since *time.Time, limit int) ([]*model.Payment, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{data: map[string]*model.Payment{}}
}

func (r *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.data[p.ID] = &cp
	return nil
}

func (r *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.data[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.data {
		if p.TransactionID == transactionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.data {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockPaymentRepo) ListCompleted(ctx context.Context, tx repository.Tx, since *time.Time, limit int) ([]*model.Payment, error) {
	if r.ListCompletedFunc != nil {
		return r.ListCompletedFunc(ctx, tx, since, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Payment
	for _, p := range r.data {
		if p.Status != model.PaymentStatusCompleted {
			continue
		}
		if since != nil && (p.PaidAt == nil || p.PaidAt.Before(*since)) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockPaymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, paidAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.PaidAt = paidAt
	return nil
}

// ---- Mock GatewayRepository ----

type MockGatewayRepo struct {
	mu       sync.Mutex
	gateways []*model.PaymentGateway
}

var _ repository.GatewayRepository = (*MockGatewayRepo)(nil)

func NewMockGatewayRepo(gws ...*model.PaymentGateway) *MockGatewayRepo {
	return &MockGatewayRepo{gateways: gws}
}

func (r *MockGatewayRepo) Save(ctx context.Context, tx repository.Tx, g *model.PaymentGateway) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways = append(r.gateways, g)
	return nil
}

func (r *MockGatewayRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.PaymentGateway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.PaymentGateway(nil), r.gateways...), nil
}

func (r *MockGatewayRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.PaymentGateway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.PaymentGateway
	for _, g := range r.gateways {
		if g.IsActive {
			out = append(out, g)
		}
	}
	return out, nil
}

// ---- Mock BoardRepository ----

type MockBoardRepo struct {
	mu         sync.Mutex
	boards     map[string]*model.Board
	itemCounts map[string]int

	CountByUserFunc func(ctx context.Context, tx repository.Tx, userID string) (int, error)
	CountItemsFunc  func(ctx context.Context, tx repository.Tx, boardID string) (int, error)
}

var _ repository.BoardRepository = (*MockBoardRepo)(nil)

func NewMockBoardRepo() *MockBoardRepo {
	return &MockBoardRepo{boards: map[string]*model.Board{}, itemCounts: map[string]int{}}
}

func (r *MockBoardRepo) Save(ctx context.Context, tx repository.Tx, b *model.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.boards[b.ID] = &cp
	return nil
}

func (r *MockBoardRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.boards[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockBoardRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	if r.CountByUserFunc != nil {
		return r.CountByUserFunc(ctx, tx, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cnt := 0
	for _, b := range r.boards {
		if b.UserID == userID {
			cnt++
		}
	}
	return cnt, nil
}

func (r *MockBoardRepo) CountItems(ctx context.Context, tx repository.Tx, boardID string) (int, error) {
	if r.CountItemsFunc != nil {
		return r.CountItemsFunc(ctx, tx, boardID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.itemCounts[boardID], nil
}

func (r *MockBoardRepo) AddItem(ctx context.Context, tx repository.Tx, boardID, libraryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.itemCounts[boardID]++
	return nil
}

func (r *MockBoardRepo) SetShared(ctx context.Context, tx repository.Tx, boardID string, shared bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.boards[boardID]; ok {
		b.IsShared = shared
		return nil
	}
	return domain.ErrNotFound
}

// ---- Mock NotificationMarker ----

type MockMarker struct {
	mu     sync.Mutex
	marked map[string]bool

	MarkIfFirstFunc func(ctx context.Context, userID, kind string, ttl time.Duration) (bool, error)
}

var _ repository.NotificationMarker = (*MockMarker)(nil)

func NewMockMarker() *MockMarker {
	return &MockMarker{marked: map[string]bool{}}
}

func (m *MockMarker) MarkIfFirst(ctx context.Context, userID, kind string, ttl time.Duration) (bool, error) {
	if m.MarkIfFirstFunc != nil {
		return m.MarkIfFirstFunc(ctx, userID, kind, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := userID + "/" + kind
	if m.marked[key] {
		return false, nil
	}
	m.marked[key] = true
	return true, nil
}

// =============================
// Adapters
// =============================

// ---- Mock Notifier ----

type MockNotifier struct {
	mu   sync.Mutex
	Sent []string // user IDs in dispatch order

	NotifyExpiringFunc func(ctx context.Context, user *model.User, daysLeft int) error
}

var _ adapter.Notifier = (*MockNotifier)(nil)

func NewMockNotifier() *MockNotifier { return &MockNotifier{} }

func (n *MockNotifier) Name() string { return "mock" }

func (n *MockNotifier) NotifyExpiring(ctx context.Context, user *model.User, daysLeft int) error {
	if n.NotifyExpiringFunc != nil {
		if err := n.NotifyExpiringFunc(ctx, user, daysLeft); err != nil {
			return err
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, user.ID)
	return nil
}

// =============================
// Infrastructure
// =============================

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

// WithTx runs the function immediately with NoTX unless a test overrides it.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Shared fixtures
// =============================

func testPlan(slug string, period model.BillingPeriod) *model.PricingPlan {
	return &model.PricingPlan{
		ID:               "plan-" + slug,
		Slug:             slug,
		Name:             slug,
		PriceCents:       900,
		Currency:         "USD",
		BillingPeriod:    period,
		MaxBoards:        model.Limited(3),
		MaxItemsPerBoard: model.Limited(40),
		IsActive:         true,
		CreatedAt:        time.Now(),
	}
}

func testUserOnPlan(id string, plan *model.PricingPlan, startAt time.Time) *model.User {
	u := &model.User{ID: id, Email: id + "@example.com", Name: id}
	_ = u.ApplyPlan(plan, startAt, model.ComputeExpiry(plan, startAt))
	return u
}
