package repository

import (
	"context"
	"time"

	"ripplix/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByTransactionID(ctx context.Context, tx Tx, transactionID string) (*model.Payment, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Payment, error)

	// ListCompleted returns completed payments, newest first. A nil since
	// means unbounded lookback; limit <= 0 means no limit.
	ListCompleted(ctx context.Context, tx Tx, since *time.Time, limit int) ([]*model.Payment, error)

	UpdateStatus(ctx context.Context, tx Tx, id string, status model.PaymentStatus, paidAt *time.Time) error
}

// GatewayRepository is the port for payment gateway rows.
type GatewayRepository interface {
	Save(ctx context.Context, tx Tx, g *model.PaymentGateway) error
	ListAll(ctx context.Context, tx Tx) ([]*model.PaymentGateway, error)
	// ListActive returns every row with the active toggle set; resolving
	// "the" active gateway out of that is business logic, not storage.
	ListActive(ctx context.Context, tx Tx) ([]*model.PaymentGateway, error)
}
