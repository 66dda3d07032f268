package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ripplix/internal/domain"
	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/repository"
)

// Ensure interface compliance
var (
	_ repository.PaymentRepository = (*PostgresPaymentRepo)(nil)
	_ repository.GatewayRepository = (*PostgresGatewayRepo)(nil)
)

type PostgresPaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPaymentRepo(pool *pgxpool.Pool) *PostgresPaymentRepo {
	return &PostgresPaymentRepo{pool: pool}
}

const paymentColumns = `id, transaction_id, user_id, plan_id, gateway_id, amount_cents, currency, status, paid_at, created_at`

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var (
		p      model.Payment
		status string
	)
	err := row.Scan(
		&p.ID, &p.TransactionID, &p.UserID, &p.PlanID, &p.GatewayID,
		&p.AmountCents, &p.Currency, &status, &p.PaidAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Status = model.PaymentStatus(status)
	return &p, nil
}

func (r *PostgresPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const sql = `
INSERT INTO payments (id, transaction_id, user_id, plan_id, gateway_id, amount_cents, currency, status, paid_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE
  SET status  = EXCLUDED.status,
      paid_at = EXCLUDED.paid_at;
`
	_, err := execSQL(ctx, r.pool, tx, sql,
		p.ID, p.TransactionID, p.UserID, p.PlanID, p.GatewayID,
		p.AmountCents, p.Currency, string(p.Status), p.PaidAt, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	return nil
}

func (r *PostgresPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	p, err := scanPayment(row)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find payment by id: %w", err)
	}
	return p, err
}

func (r *PostgresPaymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, txnID string) (*model.Payment, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+paymentColumns+` FROM payments WHERE transaction_id = $1;`, txnID)
	if err != nil {
		return nil, err
	}
	p, err := scanPayment(row)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find payment by transaction id: %w", err)
	}
	return p, err
}

func (r *PostgresPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Payment, error) {
	rows, err := pickRows(ctx, r.pool, tx, `SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

// ListCompleted returns completed payments newest first. A nil since means no
// lower bound; limit <= 0 means no cap.
func (r *PostgresPaymentRepo) ListCompleted(ctx context.Context, tx repository.Tx, since *time.Time, limit int) ([]*model.Payment, error) {
	sql := `SELECT ` + paymentColumns + ` FROM payments WHERE status = 'completed'`
	args := []interface{}{}
	if since != nil {
		args = append(args, *since)
		sql += fmt.Sprintf(` AND COALESCE(paid_at, created_at) >= $%d`, len(args))
	}
	sql += ` ORDER BY COALESCE(paid_at, created_at) DESC`
	if limit > 0 {
		args = append(args, limit)
		sql += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	rows, err := pickRows(ctx, r.pool, tx, sql+";", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *PostgresPaymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus, paidAt *time.Time) error {
	tag, err := execSQL(ctx, r.pool, tx,
		`UPDATE payments SET status = $2, paid_at = COALESCE($3, paid_at) WHERE id = $1;`,
		id, string(status), paidAt,
	)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectPayments(rows pgx.Rows) ([]*model.Payment, error) {
	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type PostgresGatewayRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresGatewayRepo(pool *pgxpool.Pool) *PostgresGatewayRepo {
	return &PostgresGatewayRepo{pool: pool}
}

const gatewayColumns = `id, slug, name, is_active`

func (r *PostgresGatewayRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.PaymentGateway, error) {
	rows, err := pickRows(ctx, r.pool, tx, `SELECT `+gatewayColumns+` FROM payment_gateways ORDER BY slug;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGateways(rows)
}

func (r *PostgresGatewayRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.PaymentGateway, error) {
	rows, err := pickRows(ctx, r.pool, tx, `SELECT `+gatewayColumns+` FROM payment_gateways WHERE is_active ORDER BY slug;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectGateways(rows)
}

func (r *PostgresGatewayRepo) Save(ctx context.Context, tx repository.Tx, g *model.PaymentGateway) error {
	const sql = `
INSERT INTO payment_gateways (id, slug, name, is_active)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
  SET slug      = EXCLUDED.slug,
      name      = EXCLUDED.name,
      is_active = EXCLUDED.is_active;
`
	if _, err := execSQL(ctx, r.pool, tx, sql, g.ID, g.Slug, g.Name, g.IsActive); err != nil {
		return fmt.Errorf("save payment gateway: %w", err)
	}
	return nil
}

func collectGateways(rows pgx.Rows) ([]*model.PaymentGateway, error) {
	var out []*model.PaymentGateway
	for rows.Next() {
		var g model.PaymentGateway
		if err := rows.Scan(&g.ID, &g.Slug, &g.Name, &g.IsActive); err != nil {
			return nil, err
		}
		out = append(out, &g)
	}
	return out, rows.Err()
}
