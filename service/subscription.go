package service

import (
	"context"
	"fmt"
	"time"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/SVG-campus/ContractKit/store"
)

// SubscriptionService gates the document pipeline on billing state and
// handles the checkout round trip. Accounts with no subscription row are
// treated as inactive.
type SubscriptionService struct {
	store     *store.Store
	stripe    *StripeService
	trialDays int

	// now is swapped in tests to pin the clock.
	now func() time.Time
}

// SubscriptionStatus is the billing view returned to the dashboard.
type SubscriptionStatus struct {
	Status             model.SubscriptionStatus `json:"status"`
	Active             bool                     `json:"active"`
	OnTrial            bool                     `json:"on_trial"`
	TrialDaysRemaining int                      `json:"trial_days_remaining"`
	CurrentPeriodEnd   *time.Time               `json:"current_period_end,omitempty"`
}

func NewSubscriptionService(st *store.Store, stripe *StripeService, trialDays int) *SubscriptionService {
	return &SubscriptionService{
		store:     st,
		stripe:    stripe,
		trialDays: trialDays,
		now:       time.Now,
	}
}

// StartTrial opens the signup trial for a new account.
func (s *SubscriptionService) StartTrial(ctx context.Context, userID string) (*model.Subscription, error) {
	trialEnd := s.now().Add(time.Duration(s.trialDays) * 24 * time.Hour)
	return s.store.CreateTrial(ctx, userID, trialEnd)
}

// Status reports the account's billing state. A missing row reads as an
// inactive account, not an error.
func (s *SubscriptionService) Status(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	sub, err := s.store.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	status := &SubscriptionStatus{
		Active:             sub.IsActive(now),
		OnTrial:            sub.IsOnTrial(now),
		TrialDaysRemaining: sub.TrialDaysRemaining(now),
	}
	if sub != nil {
		status.Status = sub.Status
		status.CurrentPeriodEnd = sub.CurrentPeriodEnd
	}
	return status, nil
}

// RequireActive admits the principal to the document pipeline or returns
// ErrSubscriptionRequired. Unknown accounts fail closed.
func (s *SubscriptionService) RequireActive(ctx context.Context, principal model.Principal) error {
	if !principal.Authenticated() {
		return model.ErrUnauthenticated
	}

	sub, err := s.store.GetSubscription(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if !sub.IsActive(s.now()) {
		return model.ErrSubscriptionRequired
	}
	return nil
}

// Checkout starts a Stripe checkout session for the account.
func (s *SubscriptionService) Checkout(ctx context.Context, email, priceID, successURL, cancelURL string) (*CheckoutSession, error) {
	if priceID == "" && s.stripe.DefaultPriceID() == "" {
		return nil, model.NewValidationError("priceId")
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, email, priceID, successURL, cancelURL)
	if err != nil {
		return nil, &model.ExternalError{Service: model.ServiceStripe, Err: err}
	}
	return session, nil
}

// ActivateFromCheckout resolves a returned checkout session server-side
// and flips the account to active. The session id alone proves nothing;
// only a session Stripe reports as complete activates the account.
func (s *SubscriptionService) ActivateFromCheckout(ctx context.Context, userID, sessionID string) (*SubscriptionStatus, error) {
	session, err := s.stripe.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, &model.ExternalError{Service: model.ServiceStripe, Err: err}
	}
	if session.Status != "complete" {
		return nil, fmt.Errorf("checkout session not complete: %s", session.Status)
	}

	err = s.store.ActivateSubscription(ctx, userID, session.Customer, session.Subscription, nil)
	if err != nil {
		return nil, err
	}

	return s.Status(ctx, userID)
}
