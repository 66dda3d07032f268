package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ripplix/internal/domain"
	"ripplix/internal/domain/model"
	"ripplix/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.PlanRepository = (*PostgresPlanRepo)(nil)

type PostgresPlanRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPlanRepo(pool *pgxpool.Pool) *PostgresPlanRepo {
	return &PostgresPlanRepo{pool: pool}
}

const planColumns = `id, slug, name, price_cents, currency, billing_period, max_boards, max_items_per_board, can_share, student_discount_percent, is_active, sort_order, created_at`

// scanPlan maps the stored max-int sentinel back into a Capacity value so
// nothing above this layer ever sees the raw number.
func scanPlan(row pgx.Row) (*model.PricingPlan, error) {
	var (
		p                  model.PricingPlan
		period             string
		maxBoards, maxItem int32
	)
	err := row.Scan(
		&p.ID, &p.Slug, &p.Name, &p.PriceCents, &p.Currency, &period,
		&maxBoards, &maxItem, &p.CanShare, &p.StudentDiscountPercent,
		&p.IsActive, &p.SortOrder, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.BillingPeriod = model.BillingPeriod(period)
	p.MaxBoards = model.CapacityFromStored(maxBoards)
	p.MaxItemsPerBoard = model.CapacityFromStored(maxItem)
	return &p, nil
}

func (r *PostgresPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.PricingPlan) error {
	const sql = `
INSERT INTO pricing_plans (id, slug, name, price_cents, currency, billing_period, max_boards, max_items_per_board, can_share, student_discount_percent, is_active, sort_order, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE
  SET slug                     = EXCLUDED.slug,
      name                     = EXCLUDED.name,
      price_cents              = EXCLUDED.price_cents,
      currency                 = EXCLUDED.currency,
      billing_period           = EXCLUDED.billing_period,
      max_boards               = EXCLUDED.max_boards,
      max_items_per_board      = EXCLUDED.max_items_per_board,
      can_share                = EXCLUDED.can_share,
      student_discount_percent = EXCLUDED.student_discount_percent,
      is_active                = EXCLUDED.is_active,
      sort_order               = EXCLUDED.sort_order;
`
	_, err := execSQL(ctx, r.pool, tx, sql,
		p.ID, p.Slug, p.Name, p.PriceCents, p.Currency, string(p.BillingPeriod),
		p.MaxBoards.Stored(), p.MaxItemsPerBoard.Stored(), p.CanShare,
		p.StudentDiscountPercent, p.IsActive, p.SortOrder, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save pricing plan: %w", err)
	}
	return nil
}

func (r *PostgresPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PricingPlan, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+planColumns+` FROM pricing_plans WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	p, err := scanPlan(row)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find plan by id: %w", err)
	}
	return p, err
}

// FindBySlug resolves active plans only; retired slugs behave as missing.
func (r *PostgresPlanRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.PricingPlan, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+planColumns+` FROM pricing_plans WHERE slug = $1 AND is_active;`, slug)
	if err != nil {
		return nil, err
	}
	p, err := scanPlan(row)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find plan by slug: %w", err)
	}
	return p, err
}

func (r *PostgresPlanRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.PricingPlan, error) {
	rows, err := pickRows(ctx, r.pool, tx, `SELECT `+planColumns+` FROM pricing_plans WHERE is_active ORDER BY sort_order, price_cents;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlans(rows)
}

func (r *PostgresPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.PricingPlan, error) {
	rows, err := pickRows(ctx, r.pool, tx, `SELECT `+planColumns+` FROM pricing_plans ORDER BY sort_order, price_cents;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlans(rows)
}

// Delete refuses to remove a plan while any user still references it.
func (r *PostgresPlanRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(1) FROM users WHERE current_plan_id = $1;`, id)
	if err != nil {
		return err
	}
	var referenced int
	if err := row.Scan(&referenced); err != nil {
		return fmt.Errorf("count plan references: %w", err)
	}
	if referenced > 0 {
		return domain.ErrPlanReferenced
	}
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM pricing_plans WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete pricing plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectPlans(rows pgx.Rows) ([]*model.PricingPlan, error) {
	var out []*model.PricingPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
