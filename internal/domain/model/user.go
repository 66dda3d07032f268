package model

import (
	"math"
	"time"

	"ripplix/internal/domain"

	"github.com/google/uuid"
)

// User is a Ripplix member. Subscription fields live directly on the user row,
// so the subscription state travels with the entity.
type User struct {
	ID           string
	Email        string
	Name         string
	Subscription SubscriptionState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(id, email, name string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if email == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{ID: id, Email: email, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// SubscriptionState carries the per-user plan fields. A nil PlanID means no
// plan assigned; a nil ExpiresAt means the plan never expires (free, lifetime).
type SubscriptionState struct {
	PlanID    *string
	StartedAt *time.Time
	ExpiresAt *time.Time
}

// IsExpired is true iff an expiry date exists and lies strictly before now.
func (s SubscriptionState) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// ExpiresSoon is true iff the subscription is still live but runs out within
// thresholdDays of now.
func (s SubscriptionState) ExpiresSoon(now time.Time, thresholdDays int) bool {
	if s.ExpiresAt == nil || s.ExpiresAt.Before(now) {
		return false
	}
	return !s.ExpiresAt.After(now.AddDate(0, 0, thresholdDays))
}

// DaysUntilExpiry returns the whole days left, rounded up and clamped to >= 0.
// nil when the subscription has no expiry date.
func (s SubscriptionState) DaysUntilExpiry(now time.Time) *int {
	if s.ExpiresAt == nil {
		return nil
	}
	d := int(math.Ceil(s.ExpiresAt.Sub(now).Hours() / 24))
	if d < 0 {
		d = 0
	}
	return &d
}

// ApplyPlan is the single mutation point for the plan fields. Every plan
// change (admin edit, payment, downgrade) must route through it so the
// expiry invariant is enforced in one place.
func (u *User) ApplyPlan(plan *PricingPlan, startAt time.Time, expiresAt *time.Time) error {
	if plan.IsZero() {
		return domain.ErrInvalidArgument
	}
	if !plan.BillingPeriod.Expires() {
		expiresAt = nil
	}
	planID := plan.ID
	u.Subscription = SubscriptionState{PlanID: &planID, StartedAt: &startAt, ExpiresAt: expiresAt}
	u.UpdatedAt = time.Now()
	return nil
}

// DowngradeToFree moves the user onto the free plan with no expiry. Calling it
// on an already-free user leaves the effective state unchanged.
func (u *User) DowngradeToFree(freePlan *PricingPlan, now time.Time) error {
	if u.Subscription.PlanID != nil && *u.Subscription.PlanID == freePlan.ID {
		u.Subscription.ExpiresAt = nil
		return nil
	}
	return u.ApplyPlan(freePlan, now, nil)
}

// ClearPlan resets the subscription fields, the explicit "remove plan" action.
func (u *User) ClearPlan() {
	u.Subscription = SubscriptionState{}
	u.UpdatedAt = time.Now()
}
