package model

import (
	"math"
	"time"
)

// SubscriptionStatus mirrors the well-known Stripe subscription states.
type SubscriptionStatus string

const (
	SubscriptionTrialing   SubscriptionStatus = "trialing"
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCanceled   SubscriptionStatus = "canceled"
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
)

// Subscription is the one-per-account billing record. The derivation
// methods tolerate a nil receiver so a missing row fails closed.
type Subscription struct {
	ID                   string             `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID               string             `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	StripeCustomerID     *string            `json:"stripe_customer_id"`
	StripeSubscriptionID *string            `json:"stripe_subscription_id"`
	Status               SubscriptionStatus `gorm:"type:varchar(16);not null" json:"status"`
	TrialEnd             *time.Time         `json:"trial_end"`
	CurrentPeriodEnd     *time.Time         `json:"current_period_end"`
	CancelAtPeriodEnd    bool               `json:"cancel_at_period_end"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// IsOnTrial reports whether the account is inside an unexpired trial.
// A trial ending exactly now is expired.
func (s *Subscription) IsOnTrial(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Status != SubscriptionTrialing || s.TrialEnd == nil {
		return false
	}
	return s.TrialEnd.After(now)
}

// IsActive reports whether the account may use the document pipeline.
func (s *Subscription) IsActive(now time.Time) bool {
	if s == nil {
		return false
	}
	return s.Status == SubscriptionActive || s.IsOnTrial(now)
}

// TrialDaysRemaining returns ceil((trial_end - now) / 1 day), never negative.
func (s *Subscription) TrialDaysRemaining(now time.Time) int {
	if s == nil || s.TrialEnd == nil {
		return 0
	}
	diff := s.TrialEnd.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(diff.Hours() / 24))
}
