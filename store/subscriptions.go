package store

import (
	"context"
	"time"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetSubscription fetches the account's subscription, or nil when none
// exists. Callers treat nil as inactive; the gate fails closed.
func (s *Store) GetSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := s.db.WithContext(ctx).First(&sub, "user_id = ?", userID).Error
	if err != nil {
		if notFound(err) == model.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// CreateTrial inserts the signup-time trialing subscription. A concurrent
// duplicate insert is a no-op: both writers converge on the existing row.
func (s *Store) CreateTrial(ctx context.Context, userID string, trialEnd time.Time) (*model.Subscription, error) {
	sub := &model.Subscription{
		ID:       uuid.New().String(),
		UserID:   userID,
		Status:   model.SubscriptionTrialing,
		TrialEnd: &trialEnd,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(sub).Error
	if err != nil {
		return nil, err
	}
	return s.GetSubscription(ctx, userID)
}

// UpdateTrialEnd rewrites an account's trial deadline. Support tooling
// uses this to extend or end trials by hand.
func (s *Store) UpdateTrialEnd(ctx context.Context, userID string, trialEnd time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("user_id = ? AND status = ?", userID, model.SubscriptionTrialing).
		Update("trial_end", trialEnd)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ActivateSubscription records a completed checkout: the Stripe ids land
// on the row, status flips to active and the trial end is cleared.
// Last write wins by design; a racing webhook-style update converges on
// the same terminal truth.
func (s *Store) ActivateSubscription(ctx context.Context, userID, customerID, subscriptionID string, periodEnd *time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"status":                 model.SubscriptionActive,
			"stripe_customer_id":     customerID,
			"stripe_subscription_id": subscriptionID,
			"current_period_end":     periodEnd,
			"trial_end":              gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
