package repository

import (
	"context"
	"time"

	"ripplix/internal/domain/model"
)

// UserRepository is the port for user persistence, including the subscription
// fields carried on the user row.
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)

	// FindExpired returns users whose plan has a billing period that expires
	// (monthly/yearly) and whose expiry date lies before now. Free and
	// lifetime plans never match because their expiry is null.
	FindExpired(ctx context.Context, tx Tx, now time.Time, limit int) ([]*model.User, error)

	// FindExpiring returns users still live at now but expiring within the
	// given number of days.
	FindExpiring(ctx context.Context, tx Tx, now time.Time, withinDays int) ([]*model.User, error)

	// SubscriptionStats computes the analytics snapshot in one consistent
	// read pass as of now.
	SubscriptionStats(ctx context.Context, tx Tx, now time.Time) (*model.SubscriptionStats, error)

	CountOnPlan(ctx context.Context, tx Tx, planID string) (int, error)
}
