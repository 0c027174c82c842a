package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/SVG-campus/ContractKit/store"
)

// SigningService handles the client-facing signature flow. Signers are
// anonymous: the contract id in the shareable link is the only credential.
type SigningService struct {
	store    *store.Store
	iplookup *IPLookupService
	notifier Notifier

	now func() time.Time
}

func NewSigningService(st *store.Store, iplookup *IPLookupService, notifier Notifier) *SigningService {
	return &SigningService{
		store:    st,
		iplookup: iplookup,
		notifier: notifier,
		now:      time.Now,
	}
}

// SignInput carries the client's signature submission.
type SignInput struct {
	SignerName    string `json:"signer_name"`
	SignatureText string `json:"signature_text"`
	AgreedToTerms bool   `json:"agreed_to_terms"`

	// Filled from the request, not the body.
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

func (in *SignInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.SignerName) == "" {
		missing = append(missing, "signer_name")
	}
	if strings.TrimSpace(in.SignatureText) == "" {
		missing = append(missing, "signature_text")
	}
	if !in.AgreedToTerms {
		missing = append(missing, "agreed_to_terms")
	}
	if len(missing) > 0 {
		return model.NewValidationError(missing...)
	}
	return nil
}

// LoadForSigning fetches the contract a signing link points at. Only a
// sent contract is shown; anything else tells the client why not.
func (s *SigningService) LoadForSigning(ctx context.Context, contractID string) (*model.Contract, error) {
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	switch contract.Status {
	case model.ContractCancelled:
		return nil, model.ErrContractCancelled
	case model.ContractSigned:
		return nil, model.ErrAlreadySigned
	case model.ContractDraft:
		return nil, model.ErrNotReadyToSign
	}
	return contract, nil
}

// Sign applies the client's signature to a sent contract. Exactly one
// concurrent attempt wins; the rest see ErrAlreadySigned.
func (s *SigningService) Sign(ctx context.Context, contractID string, in SignInput) (*model.Contract, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ip := in.IPAddress
	if ip == "" && s.iplookup != nil {
		// Best effort; a signature without an IP is still a signature
		resolved, err := s.iplookup.LookupIP(ctx)
		if err != nil {
			slog.WarnContext(ctx, "ip lookup failed", "error", err)
		} else {
			ip = resolved
		}
	}

	sig := &model.Signature{
		SignerName:    strings.TrimSpace(in.SignerName),
		SignatureText: strings.TrimSpace(in.SignatureText),
		IPAddress:     ip,
		UserAgent:     in.UserAgent,
	}

	contract, err := s.store.SignContract(ctx, contractID, sig, s.now())
	if err != nil {
		return nil, err
	}

	entry := &model.AuditLog{
		UserID:     contract.UserID,
		ContractID: &contract.ID,
		Action:     model.ActionContractSigned,
		Details: model.AuditDetails{
			"contract_number": contract.ContractNumber,
			"signer_name":     sig.SignerName,
			"ip_address":      ip,
		},
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to append audit entry", "action", model.ActionContractSigned, "error", err)
	}

	s.notifier.ContractSigned(ctx, contract)
	return contract, nil
}
