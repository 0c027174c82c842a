package store

import (
	"context"
	"errors"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateVersion mints the next version number for the contract and inserts
// the snapshot together with its audit entry in one transaction. Version
// numbers are minted only here; callers never supply their own.
//
// The read-max-then-insert sequence is serialized by the per-contract lock.
// If another process slips in anyway, the unique index rejects the insert
// and the whole transaction is retried once with a fresh number.
func (s *Store) CreateVersion(ctx context.Context, version *model.ContractVersion, audit *model.AuditLog) error {
	unlock := s.lockContract(version.ContractID)
	defer unlock()

	err := s.insertVersion(ctx, version, audit)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = s.insertVersion(ctx, version, audit)
	}
	return err
}

func (s *Store) insertVersion(ctx context.Context, version *model.ContractVersion, audit *model.AuditLog) error {
	version.ID = uuid.New().String()
	if audit != nil && audit.ID == "" {
		audit.ID = uuid.New().String()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var max int
		err := tx.Model(&model.ContractVersion{}).
			Where("contract_id = ?", version.ContractID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&max).Error
		if err != nil {
			return err
		}

		version.VersionNumber = max + 1
		if err := tx.Create(version).Error; err != nil {
			return err
		}

		if audit != nil {
			if audit.Details == nil {
				audit.Details = model.AuditDetails{}
			}
			audit.Details["version"] = version.VersionNumber
			if err := tx.Create(audit).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListVersions returns a contract's versions, newest first.
func (s *Store) ListVersions(ctx context.Context, contractID string) ([]model.ContractVersion, error) {
	var versions []model.ContractVersion
	err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("version_number DESC").
		Find(&versions).Error
	return versions, err
}
