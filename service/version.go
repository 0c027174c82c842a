package service

import (
	"context"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/SVG-campus/ContractKit/store"
)

// VersionService records immutable contract snapshots. Version numbers
// are minted by the store; this layer validates the snapshot and resolves
// the author's display name.
type VersionService struct {
	store *store.Store
}

func NewVersionService(st *store.Store) *VersionService {
	return &VersionService{store: st}
}

// Record snapshots the contract's current state as its next version and
// writes the matching audit entry.
func (s *VersionService) Record(ctx context.Context, principal model.Principal, contract *model.Contract, changeDescription string, action string) (*model.ContractVersion, error) {
	if !principal.Authenticated() {
		return nil, model.ErrUnauthenticated
	}

	snapshot := contract.Snapshot()
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	version := &model.ContractVersion{
		ContractID:        contract.ID,
		UserID:            principal.UserID,
		ContractData:      snapshot,
		ChangeDescription: changeDescription,
		ChangedByName:     s.authorName(ctx, principal),
	}
	audit := &model.AuditLog{
		UserID:     principal.UserID,
		ContractID: &contract.ID,
		Action:     action,
		Details: model.AuditDetails{
			"contract_number": contract.ContractNumber,
			"change":          changeDescription,
		},
	}

	if err := s.store.CreateVersion(ctx, version, audit); err != nil {
		return nil, err
	}
	return version, nil
}

// List returns a contract's history, newest first, scoped to its owner.
func (s *VersionService) List(ctx context.Context, principal model.Principal, contractID string) ([]model.ContractVersion, error) {
	if !principal.Authenticated() {
		return nil, model.ErrUnauthenticated
	}

	// Ownership check before exposing history
	if _, err := s.store.GetContractForUser(ctx, contractID, principal.UserID); err != nil {
		return nil, err
	}
	return s.store.ListVersions(ctx, contractID)
}

// authorName prefers the profile's full name, falling back to the email.
func (s *VersionService) authorName(ctx context.Context, principal model.Principal) string {
	profile, err := s.store.GetProfile(ctx, principal.UserID)
	if err == nil && profile != nil && profile.FullName != "" {
		return profile.FullName
	}
	return principal.Email
}
