package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SVG-campus/ContractKit/model"
)

func TestContractTransitions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	contract := seedContract(t, s, model.ContractDraft)

	if err := s.MarkContractSent(ctx, contract.ID, now); err != nil {
		t.Fatalf("Failed to mark sent: %v", err)
	}

	got, err := s.GetContract(ctx, contract.ID)
	if err != nil {
		t.Fatalf("Failed to fetch contract: %v", err)
	}
	if got.Status != model.ContractSent {
		t.Errorf("Expected sent, got %s", got.Status)
	}
	if got.SentAt == nil {
		t.Error("Expected sent_at to be stamped")
	}

	// Sending twice is an illegal transition
	err = s.MarkContractSent(ctx, contract.ID, now)
	var te *model.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransitionError, got %v", err)
	}
	if te.From != "sent" {
		t.Errorf("Expected transition from sent, got %s", te.From)
	}
}

func TestCancelContract(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	draft := seedContract(t, s, model.ContractDraft)
	if err := s.CancelContractForUser(ctx, draft.ID, "user-1"); err != nil {
		t.Fatalf("Failed to cancel draft: %v", err)
	}

	sent := seedContract(t, s, model.ContractSent)
	if err := s.CancelContractForUser(ctx, sent.ID, "user-1"); err != nil {
		t.Fatalf("Failed to cancel sent contract: %v", err)
	}

	signed := seedContract(t, s, model.ContractSigned)
	err := s.CancelContractForUser(ctx, signed.ID, "user-1")
	var te *model.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransitionError for signed contract, got %v", err)
	}

	// Ownership is part of the predicate
	other := seedContract(t, s, model.ContractDraft)
	if err := s.CancelContractForUser(ctx, other.ID, "user-2"); err != model.ErrNotFound {
		t.Errorf("Expected ErrNotFound for non-owner, got %v", err)
	}
}

func TestSignContract(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	contract := seedContract(t, s, model.ContractSent)

	sig := &model.Signature{
		SignerName:    "Casey Client",
		SignerEmail:   "client@acme.test",
		SignatureText: "Casey Client",
		IPAddress:     "203.0.113.9",
	}
	signed, err := s.SignContract(ctx, contract.ID, sig, now)
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}
	if signed.Status != model.ContractSigned {
		t.Errorf("Expected signed, got %s", signed.Status)
	}
	if signed.ClientSignature == nil || *signed.ClientSignature != "Casey Client" {
		t.Error("Expected signature text on contract")
	}
	if signed.ClientSignedAt == nil {
		t.Error("Expected signed_at on contract")
	}
	if signed.ClientIPAddress == nil || *signed.ClientIPAddress != "203.0.113.9" {
		t.Error("Expected signer ip on contract")
	}

	sigs, err := s.SignaturesForContract(ctx, contract.ID)
	if err != nil {
		t.Fatalf("Failed to list signatures: %v", err)
	}
	if len(sigs) != 1 {
		t.Fatalf("Expected 1 signature record, got %d", len(sigs))
	}

	// Second attempt is rejected
	_, err = s.SignContract(ctx, contract.ID, &model.Signature{SignerName: "x", SignatureText: "x"}, now)
	if err != model.ErrAlreadySigned {
		t.Errorf("Expected ErrAlreadySigned, got %v", err)
	}
}

func TestSignContractWrongStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()
	sig := func() *model.Signature {
		return &model.Signature{SignerName: "Casey", SignatureText: "Casey"}
	}

	draft := seedContract(t, s, model.ContractDraft)
	if _, err := s.SignContract(ctx, draft.ID, sig(), now); err != model.ErrNotReadyToSign {
		t.Errorf("Expected ErrNotReadyToSign for draft, got %v", err)
	}

	cancelled := seedContract(t, s, model.ContractCancelled)
	if _, err := s.SignContract(ctx, cancelled.ID, sig(), now); err != model.ErrContractCancelled {
		t.Errorf("Expected ErrContractCancelled, got %v", err)
	}

	if _, err := s.SignContract(ctx, "no-such-id", sig(), now); err != model.ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSignContractConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	contract := seedContract(t, s, model.ContractSent)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sig := &model.Signature{SignerName: "Casey", SignatureText: "Casey"}
			_, errs[i] = s.SignContract(ctx, contract.ID, sig, time.Now())
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch err {
		case nil:
			succeeded++
		case model.ErrAlreadySigned:
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("Expected exactly 1 successful signing, got %d", succeeded)
	}

	sigs, err := s.SignaturesForContract(ctx, contract.ID)
	if err != nil {
		t.Fatalf("Failed to list signatures: %v", err)
	}
	if len(sigs) != 1 {
		t.Errorf("Expected exactly 1 signature record, got %d", len(sigs))
	}
}

func TestContractOwnershipScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	contract := seedContract(t, s, model.ContractDraft)

	if _, err := s.GetContractForUser(ctx, contract.ID, "user-2"); err != model.ErrNotFound {
		t.Errorf("Expected ErrNotFound for non-owner, got %v", err)
	}

	// The unscoped fetch serves the signing flow
	if _, err := s.GetContract(ctx, contract.ID); err != nil {
		t.Errorf("Expected unscoped fetch to succeed, got %v", err)
	}

	list, err := s.ListContracts(ctx, "user-2")
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected empty list for other user, got %d", len(list))
	}
}

func TestUpdateContractTerms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	contract := seedContract(t, s, model.ContractDraft)
	contract.ScopeOfWork = "Revised scope with motion assets"
	contract.TotalAmount = 6500
	if err := s.UpdateContractTerms(ctx, contract); err != nil {
		t.Fatalf("Failed to update terms: %v", err)
	}

	got, _ := s.GetContract(ctx, contract.ID)
	if got.ScopeOfWork != "Revised scope with motion assets" {
		t.Errorf("Expected updated scope, got %s", got.ScopeOfWork)
	}
	if got.TotalAmount != 6500 {
		t.Errorf("Expected updated total, got %v", got.TotalAmount)
	}

	// Signed contracts are immutable
	signed := seedContract(t, s, model.ContractSigned)
	signed.ScopeOfWork = "should not apply"
	err := s.UpdateContractTerms(ctx, signed)
	var te *model.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TransitionError for signed contract, got %v", err)
	}
}

func TestSetContractPDFURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	contract := seedContract(t, s, model.ContractDraft)
	if err := s.SetContractPDFURL(ctx, contract.ID, "http://blob/c.pdf"); err != nil {
		t.Fatalf("Failed to set pdf url: %v", err)
	}

	got, _ := s.GetContract(ctx, contract.ID)
	if got.PDFURL == nil || *got.PDFURL != "http://blob/c.pdf" {
		t.Error("Expected pdf url to be persisted")
	}

	if err := s.SetContractPDFURL(ctx, "no-such-id", "x"); err != model.ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
