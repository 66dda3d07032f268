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
var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

const userColumns = `id, email, name, current_plan_id, plan_started_at, plan_expires_at, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name,
		&u.Subscription.PlanID, &u.Subscription.StartedAt, &u.Subscription.ExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const sql = `
INSERT INTO users (id, email, name, current_plan_id, plan_started_at, plan_expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
  SET email           = EXCLUDED.email,
      name            = EXCLUDED.name,
      current_plan_id = EXCLUDED.current_plan_id,
      plan_started_at = EXCLUDED.plan_started_at,
      plan_expires_at = EXCLUDED.plan_expires_at,
      updated_at      = EXCLUDED.updated_at;
`
	_, err := execSQL(ctx, r.pool, tx, sql,
		u.ID, u.Email, u.Name,
		u.Subscription.PlanID, u.Subscription.StartedAt, u.Subscription.ExpiresAt,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, err
}

func (r *PostgresUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, err
}

// FindExpired joins plans so that only billing periods that carry an expiry
// can ever match; free and lifetime rows have a null expiry by invariant.
func (r *PostgresUserRepo) FindExpired(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*model.User, error) {
	sql := `
SELECT u.id, u.email, u.name, u.current_plan_id, u.plan_started_at, u.plan_expires_at, u.created_at, u.updated_at
  FROM users u
  JOIN pricing_plans p ON p.id = u.current_plan_id
 WHERE p.billing_period IN ('monthly', 'yearly')
   AND u.plan_expires_at IS NOT NULL
   AND u.plan_expires_at < $1
 ORDER BY u.plan_expires_at ASC`
	args := []interface{}{now}
	if limit > 0 {
		sql += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := pickRows(ctx, r.pool, tx, sql+";", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *PostgresUserRepo) FindExpiring(ctx context.Context, tx repository.Tx, now time.Time, withinDays int) ([]*model.User, error) {
	const sql = `
SELECT u.id, u.email, u.name, u.current_plan_id, u.plan_started_at, u.plan_expires_at, u.created_at, u.updated_at
  FROM users u
  JOIN pricing_plans p ON p.id = u.current_plan_id
 WHERE p.billing_period IN ('monthly', 'yearly')
   AND u.plan_expires_at >= $1
   AND u.plan_expires_at <= $2
 ORDER BY u.plan_expires_at ASC;
`
	rows, err := pickRows(ctx, r.pool, tx, sql, now, now.AddDate(0, 0, withinDays))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

// SubscriptionStats runs one aggregate query so every count shares the same
// database snapshot.
func (r *PostgresUserRepo) SubscriptionStats(ctx context.Context, tx repository.Tx, now time.Time) (*model.SubscriptionStats, error) {
	const sql = `
SELECT
  COUNT(*) FILTER (WHERE p.billing_period IN ('monthly', 'yearly')
                     AND (u.plan_expires_at IS NULL OR u.plan_expires_at >= $1)) AS active_paid,
  COUNT(*) FILTER (WHERE u.plan_expires_at >= $1 AND u.plan_expires_at <= $2)    AS expiring_soon,
  COUNT(*) FILTER (WHERE u.plan_expires_at < $1)                                 AS expired_pending,
  COUNT(*) FILTER (WHERE p.billing_period = 'monthly')                           AS monthly_users,
  COUNT(*) FILTER (WHERE p.billing_period = 'yearly')                            AS yearly_users,
  COUNT(*) FILTER (WHERE p.billing_period = 'lifetime')                          AS lifetime_users,
  COUNT(*) FILTER (WHERE p.billing_period = 'free')                              AS free_members
  FROM users u
  JOIN pricing_plans p ON p.id = u.current_plan_id;
`
	row, err := pickRow(ctx, r.pool, tx, sql, now, now.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	var s model.SubscriptionStats
	if err := row.Scan(&s.ActivePaid, &s.ExpiringSoon, &s.ExpiredPending, &s.MonthlyUsers, &s.YearlyUsers, &s.LifetimeUsers, &s.FreeMembers); err != nil {
		return nil, fmt.Errorf("subscription stats: %w", err)
	}
	return &s, nil
}

func (r *PostgresUserRepo) CountOnPlan(ctx context.Context, tx repository.Tx, planID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(1) FROM users WHERE current_plan_id = $1;`, planID)
	if err != nil {
		return 0, err
	}
	var cnt int
	if err := row.Scan(&cnt); err != nil {
		return 0, fmt.Errorf("count users on plan: %w", err)
	}
	return cnt, nil
}

func collectUsers(rows pgx.Rows) ([]*model.User, error) {
	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
