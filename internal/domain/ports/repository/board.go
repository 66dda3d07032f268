package repository

import (
	"context"

	"ripplix/internal/domain/model"
)

// BoardRepository is the port for boards and their item membership. The
// entitlement checks only consume the counting methods.
type BoardRepository interface {
	Save(ctx context.Context, tx Tx, b *model.Board) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Board, error)
	CountByUser(ctx context.Context, tx Tx, userID string) (int, error)
	CountItems(ctx context.Context, tx Tx, boardID string) (int, error)
	AddItem(ctx context.Context, tx Tx, boardID, libraryID string) error
	SetShared(ctx context.Context, tx Tx, boardID string, shared bool) error
}
