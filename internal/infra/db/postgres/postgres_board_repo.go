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
var _ repository.BoardRepository = (*PostgresBoardRepo)(nil)

type PostgresBoardRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresBoardRepo(pool *pgxpool.Pool) *PostgresBoardRepo {
	return &PostgresBoardRepo{pool: pool}
}

func (r *PostgresBoardRepo) Save(ctx context.Context, tx repository.Tx, b *model.Board) error {
	const sql = `
INSERT INTO boards (id, user_id, name, is_shared, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
  SET name      = EXCLUDED.name,
      is_shared = EXCLUDED.is_shared;
`
	if _, err := execSQL(ctx, r.pool, tx, sql, b.ID, b.UserID, b.Name, b.IsShared, b.CreatedAt); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

func (r *PostgresBoardRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Board, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT id, user_id, name, is_shared, created_at FROM boards WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	var b model.Board
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.IsShared, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find board by id: %w", err)
	}
	return &b, nil
}

func (r *PostgresBoardRepo) CountByUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(1) FROM boards WHERE user_id = $1;`, userID)
	if err != nil {
		return 0, err
	}
	var cnt int
	if err := row.Scan(&cnt); err != nil {
		return 0, fmt.Errorf("count boards: %w", err)
	}
	return cnt, nil
}

func (r *PostgresBoardRepo) CountItems(ctx context.Context, tx repository.Tx, boardID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(1) FROM board_items WHERE board_id = $1;`, boardID)
	if err != nil {
		return 0, err
	}
	var cnt int
	if err := row.Scan(&cnt); err != nil {
		return 0, fmt.Errorf("count board items: %w", err)
	}
	return cnt, nil
}

func (r *PostgresBoardRepo) AddItem(ctx context.Context, tx repository.Tx, boardID, itemID string) error {
	const sql = `
INSERT INTO board_items (board_id, item_id, added_at)
VALUES ($1, $2, NOW())
ON CONFLICT (board_id, item_id) DO NOTHING;
`
	if _, err := execSQL(ctx, r.pool, tx, sql, boardID, itemID); err != nil {
		return fmt.Errorf("add board item: %w", err)
	}
	return nil
}

func (r *PostgresBoardRepo) SetShared(ctx context.Context, tx repository.Tx, boardID string, shared bool) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE boards SET is_shared = $2 WHERE id = $1;`, boardID, shared)
	if err != nil {
		return fmt.Errorf("set board shared: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
