package service

import (
	"context"
	"testing"
	"time"

	"github.com/SVG-campus/ContractKit/model"
)

func TestStartTrial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := &model.User{Email: "new@example.com", PasswordHash: "hash"}
	if err := env.store.CreateUser(ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	sub, err := env.gate.StartTrial(ctx, user.ID)
	if err != nil {
		t.Fatalf("Failed to start trial: %v", err)
	}
	if sub.Status != model.SubscriptionTrialing {
		t.Errorf("Expected trialing, got %s", sub.Status)
	}

	status, err := env.gate.Status(ctx, user.ID)
	if err != nil {
		t.Fatalf("Failed to get status: %v", err)
	}
	if !status.Active || !status.OnTrial {
		t.Error("Expected active trial")
	}
	if status.TrialDaysRemaining != 14 {
		t.Errorf("Expected 14 days remaining, got %d", status.TrialDaysRemaining)
	}
}

func TestRequireActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// No subscription row fails closed
	user := &model.User{Email: "nosub@example.com", PasswordHash: "hash"}
	if err := env.store.CreateUser(ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	err := env.gate.RequireActive(ctx, model.Principal{UserID: user.ID, Email: user.Email})
	if err != model.ErrSubscriptionRequired {
		t.Errorf("Expected ErrSubscriptionRequired without a row, got %v", err)
	}

	// Unauthenticated principals are rejected outright
	if err := env.gate.RequireActive(ctx, model.Principal{}); err != model.ErrUnauthenticated {
		t.Errorf("Expected ErrUnauthenticated, got %v", err)
	}

	// An unexpired trial passes
	onTrial := env.trialUser(t, "trial@example.com", time.Now().Add(48*time.Hour))
	if err := env.gate.RequireActive(ctx, onTrial); err != nil {
		t.Errorf("Expected trial account to pass, got %v", err)
	}

	// An expired trial is rejected
	expired := env.trialUser(t, "expired@example.com", time.Now().Add(-time.Minute))
	err = env.gate.RequireActive(ctx, expired)
	if err != model.ErrSubscriptionRequired {
		t.Errorf("Expected ErrSubscriptionRequired for expired trial, got %v", err)
	}

	// An active subscription passes regardless of trial end
	active := env.activeUser(t, "paying@example.com")
	if err := env.gate.RequireActive(ctx, active); err != nil {
		t.Errorf("Expected active account to pass, got %v", err)
	}
}

func TestStatusForUnknownAccount(t *testing.T) {
	env := newTestEnv(t)

	status, err := env.gate.Status(context.Background(), "no-such-user")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if status.Active || status.OnTrial {
		t.Error("Expected inactive status for unknown account")
	}
	if status.TrialDaysRemaining != 0 {
		t.Errorf("Expected 0 days remaining, got %d", status.TrialDaysRemaining)
	}
}

func TestTrialExpiryBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	boundary := time.Now().Add(time.Hour)
	principal := env.trialUser(t, "boundary@example.com", boundary)

	// One second before the boundary the trial is live
	env.gate.now = func() time.Time { return boundary.Add(-time.Second) }
	if err := env.gate.RequireActive(ctx, principal); err != nil {
		t.Errorf("Expected trial to be live before the boundary, got %v", err)
	}

	// At the boundary it is expired
	env.gate.now = func() time.Time { return boundary }
	if err := env.gate.RequireActive(ctx, principal); err != model.ErrSubscriptionRequired {
		t.Errorf("Expected trial to expire at the boundary, got %v", err)
	}
}
