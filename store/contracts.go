package store

import (
	"context"
	"time"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateContract persists a new contract. An empty id is filled in.
func (s *Store) CreateContract(ctx context.Context, contract *model.Contract) error {
	if contract.ID == "" {
		contract.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(contract).Error
}

// GetContract fetches a contract by id regardless of owner. The signing
// flow uses this: the client signing via a shareable link is not the owner.
func (s *Store) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var contract model.Contract
	if err := s.db.WithContext(ctx).First(&contract, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &contract, nil
}

// GetContractForUser fetches a contract scoped to its owner.
func (s *Store) GetContractForUser(ctx context.Context, id, userID string) (*model.Contract, error) {
	var contract model.Contract
	err := s.db.WithContext(ctx).First(&contract, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &contract, nil
}

// ListContracts returns the owner's contracts, newest first.
func (s *Store) ListContracts(ctx context.Context, userID string) ([]model.Contract, error) {
	var contracts []model.Contract
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&contracts).Error
	return contracts, err
}

// UpdateContractTerms persists edited terms for an owner's draft or sent
// contract. Signed and cancelled contracts are immutable.
func (s *Store) UpdateContractTerms(ctx context.Context, contract *model.Contract) error {
	res := s.db.WithContext(ctx).Model(&model.Contract{}).
		Where("id = ? AND user_id = ? AND status IN ?", contract.ID, contract.UserID,
			[]model.ContractStatus{model.ContractDraft, model.ContractSent}).
		Updates(map[string]any{
			"client_name":         contract.ClientName,
			"client_email":        contract.ClientEmail,
			"client_company":      contract.ClientCompany,
			"project_name":        contract.ProjectName,
			"project_description": contract.ProjectDescription,
			"scope_of_work":       contract.ScopeOfWork,
			"deliverables":        contract.Deliverables,
			"timeline":            contract.Timeline,
			"total_amount":        contract.TotalAmount,
			"payment_schedule":    contract.PaymentSchedule,
			"revisions_included":  contract.RevisionsIncluded,
			"governing_state":     contract.GoverningState,
			"effective_date":      contract.EffectiveDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	current, err := s.GetContractForUser(ctx, contract.ID, contract.UserID)
	if err != nil {
		return err
	}
	return &model.TransitionError{Entity: "contract", From: string(current.Status), To: string(current.Status)}
}

// SetContractPDFURL records the rendered PDF location. Allowed in any
// status: regenerating the PDF is an administrative change, not a
// contract-defining one.
func (s *Store) SetContractPDFURL(ctx context.Context, id, url string) error {
	res := s.db.WithContext(ctx).Model(&model.Contract{}).
		Where("id = ?", id).
		Update("pdf_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// transitionContract performs a conditional status flip and classifies a
// zero-row result by re-reading the current status.
func (s *Store) transitionContract(ctx context.Context, id string, from, to model.ContractStatus, updates map[string]any) error {
	updates["status"] = to
	res := s.db.WithContext(ctx).Model(&model.Contract{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	current, err := s.GetContract(ctx, id)
	if err != nil {
		return err
	}
	return &model.TransitionError{Entity: "contract", From: string(current.Status), To: string(to)}
}

// MarkContractSent transitions draft -> sent and stamps the sent time.
func (s *Store) MarkContractSent(ctx context.Context, id string, at time.Time) error {
	return s.transitionContract(ctx, id, model.ContractDraft, model.ContractSent, map[string]any{
		"sent_at": at,
	})
}

// CancelContractForUser transitions an owner's draft or sent contract to
// cancelled. Terminal statuses are rejected.
func (s *Store) CancelContractForUser(ctx context.Context, id, userID string) error {
	res := s.db.WithContext(ctx).Model(&model.Contract{}).
		Where("id = ? AND user_id = ? AND status IN ?", id, userID,
			[]model.ContractStatus{model.ContractDraft, model.ContractSent}).
		Update("status", model.ContractCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	current, err := s.GetContractForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	return &model.TransitionError{Entity: "contract", From: string(current.Status), To: string(model.ContractCancelled)}
}

// SignContract atomically flips a sent contract to signed, captures the
// signature fields on the contract row, and inserts the signature record.
// The conditional update closes the signing race: of two concurrent
// attempts exactly one matches status = sent.
func (s *Store) SignContract(ctx context.Context, id string, sig *model.Signature, at time.Time) (*model.Contract, error) {
	if sig.ID == "" {
		sig.ID = uuid.New().String()
	}
	sig.ContractID = id

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Contract{}).
			Where("id = ? AND status = ?", id, model.ContractSent).
			Updates(map[string]any{
				"status":            model.ContractSigned,
				"client_signature":  sig.SignatureText,
				"client_signed_at":  at,
				"client_ip_address": sig.IPAddress,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var current model.Contract
			if err := tx.First(&current, "id = ?", id).Error; err != nil {
				return notFound(err)
			}
			switch current.Status {
			case model.ContractSigned:
				return model.ErrAlreadySigned
			case model.ContractCancelled:
				return model.ErrContractCancelled
			default:
				return model.ErrNotReadyToSign
			}
		}

		if sig.SignerEmail == "" {
			var current model.Contract
			if err := tx.Select("client_email").First(&current, "id = ?", id).Error; err != nil {
				return err
			}
			sig.SignerEmail = current.ClientEmail
		}

		return tx.Create(sig).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetContract(ctx, id)
}

// SignaturesForContract lists signing events for a contract.
func (s *Store) SignaturesForContract(ctx context.Context, contractID string) ([]model.Signature, error) {
	var sigs []model.Signature
	err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&sigs).Error
	return sigs, err
}
