package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment records one transaction against a gateway. For every completed
// payment, the paying user's plan is expected to match PlanID with
// StartedAt >= PaidAt; the reconciler reports and repairs violations.
type Payment struct {
	ID            string
	TransactionID string // gateway-assigned, or ULID when generated internally
	UserID        string
	PlanID        string
	GatewayID     string
	AmountCents   int64
	Currency      string
	Status        PaymentStatus
	PaidAt        *time.Time
	CreatedAt     time.Time
}

func (p *Payment) IsZero() bool { return p == nil || p.ID == "" }

// PaymentGateway is a configured provider. Exactly one row is expected to be
// active at a time; resolution errors on zero or several.
type PaymentGateway struct {
	ID       string
	Slug     string
	Name     string
	IsActive bool
}
