package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ripplix/internal/domain"
	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/repository"
	"ripplix/internal/infra/logging"
	"ripplix/internal/infra/metrics"
)

// Compile-time check
var _ ReconcileUseCase = (*reconcileUC)(nil)

// Drift is a detected mismatch between a completed payment's plan and the
// payer's currently recorded plan. A drift may mean the payment was never
// applied, or that the user legitimately moved to another plan after paying;
// the two cases are indistinguishable here and are flagged identically.
// Repair is therefore always an explicit operator decision.
type Drift struct {
	PaymentID      string
	TransactionID  string
	UserID         string
	ExpectedPlanID string
	ActualPlanID   *string
	PaidAt         *time.Time
}

// AuditReport lists drifts found in one read-only scan.
type AuditReport struct {
	Checked int
	Drifts  []Drift
}

// RepairReport aggregates one opt-in repair pass.
type RepairReport struct {
	Attempted int
	Repaired  int
	Failed    int
}

type ReconcileUseCase interface {
	// ApplyCompleted makes the paying user's plan fields reflect the payment.
	// Idempotent: re-applying the same payment converges on the same state.
	ApplyCompleted(ctx context.Context, payment *model.Payment) error

	// ApplyByID loads the payment and applies it.
	ApplyByID(ctx context.Context, paymentID string) error

	// Audit scans completed payments (all of them when since is nil) and
	// reports drift without mutating anything.
	Audit(ctx context.Context, since *time.Time) (*AuditReport, error)

	// AuditUser reports drift over a single user's completed payments.
	AuditUser(ctx context.Context, userID string) (*AuditReport, error)

	// Repair applies the single-payment effect to each drift. Never invoked
	// without explicit operator confirmation upstream.
	Repair(ctx context.Context, drifts []Drift) (*RepairReport, error)
}

type reconcileUC struct {
	payments repository.PaymentRepository
	users    repository.UserRepository
	plans    repository.PlanRepository
	txm      repository.TransactionManager
	log      *zerolog.Logger
}

func NewReconcileUseCase(payments repository.PaymentRepository, users repository.UserRepository, plans repository.PlanRepository, txm repository.TransactionManager, logger *zerolog.Logger) *reconcileUC {
	ucLog := logger.With().Str("component", "ReconcileUseCase").Logger()
	return &reconcileUC{payments: payments, users: users, plans: plans, txm: txm, log: &ucLog}
}

func (uc *reconcileUC) ApplyCompleted(ctx context.Context, payment *model.Payment) error {
	if payment.IsZero() {
		return domain.ErrInvalidArgument
	}
	if payment.Status != model.PaymentStatusCompleted {
		return domain.ErrPaymentNotCompleted
	}

	apply := func(ctx context.Context, tx repository.Tx) error {
		plan, err := uc.plans.FindByID(ctx, tx, payment.PlanID)
		if err != nil {
			return fmt.Errorf("load plan %s: %w", payment.PlanID, err)
		}
		user, err := uc.users.FindByID(ctx, tx, payment.UserID)
		if err != nil {
			return fmt.Errorf("load user %s: %w", payment.UserID, err)
		}

		paidAt := payment.CreatedAt
		if payment.PaidAt != nil {
			paidAt = *payment.PaidAt
		}
		if err := user.ApplyPlan(plan, paidAt, model.ComputeExpiry(plan, paidAt)); err != nil {
			return err
		}
		return uc.users.Save(ctx, tx, user)
	}

	var err error
	if uc.txm == nil {
		err = apply(ctx, repository.NoTX)
	} else {
		err = uc.txm.WithTx(ctx, pgx.TxOptions{}, apply)
	}
	if err == nil {
		metrics.IncPayment(string(payment.Status))
	}
	return err
}

func (uc *reconcileUC) ApplyByID(ctx context.Context, paymentID string) error {
	p, err := uc.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return err
	}
	return uc.ApplyCompleted(ctx, p)
}

func (uc *reconcileUC) Audit(ctx context.Context, since *time.Time) (*AuditReport, error) {
	defer logging.TraceDuration(uc.log, "ReconcileUseCase.Audit")()
	completed, err := uc.payments.ListCompleted(ctx, repository.NoTX, since, 0)
	if err != nil {
		return nil, fmt.Errorf("list completed payments: %w", err)
	}
	return uc.audit(ctx, completed)
}

func (uc *reconcileUC) AuditUser(ctx context.Context, userID string) (*AuditReport, error) {
	all, err := uc.payments.ListByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments for user %s: %w", userID, err)
	}
	completed := all[:0:0]
	for _, p := range all {
		if p.Status == model.PaymentStatusCompleted {
			completed = append(completed, p)
		}
	}
	return uc.audit(ctx, completed)
}

func (uc *reconcileUC) audit(ctx context.Context, completed []*model.Payment) (*AuditReport, error) {
	report := &AuditReport{}
	for _, p := range completed {
		report.Checked++
		user, err := uc.users.FindByID(ctx, repository.NoTX, p.UserID)
		if err != nil {
			uc.log.Warn().Err(err).Str("payment_id", p.ID).Str("user_id", p.UserID).Msg("payer not loadable; skipping")
			continue
		}
		if user.Subscription.PlanID != nil && *user.Subscription.PlanID == p.PlanID {
			continue
		}
		report.Drifts = append(report.Drifts, Drift{
			PaymentID:      p.ID,
			TransactionID:  p.TransactionID,
			UserID:         p.UserID,
			ExpectedPlanID: p.PlanID,
			ActualPlanID:   user.Subscription.PlanID,
			PaidAt:         p.PaidAt,
		})
	}
	metrics.SetPaymentDrift(len(report.Drifts))
	return report, nil
}

func (uc *reconcileUC) Repair(ctx context.Context, drifts []Drift) (*RepairReport, error) {
	report := &RepairReport{}
	for _, d := range drifts {
		report.Attempted++
		if err := uc.ApplyByID(ctx, d.PaymentID); err != nil {
			report.Failed++
			uc.log.Error().Err(err).Str("payment_id", d.PaymentID).Msg("drift repair failed")
			continue
		}
		report.Repaired++
		metrics.IncDriftRepaired()
	}
	return report, nil
}
