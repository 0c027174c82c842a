package store

import (
	"context"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/google/uuid"
)

// AppendAudit inserts one audit entry. Rows are append-only; nothing in
// this package updates or deletes them.
func (s *Store) AppendAudit(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

// ListAudit returns the account's audit trail, newest first.
func (s *Store) ListAudit(ctx context.Context, userID string) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// AuditForContract returns a contract's audit entries, newest first.
func (s *Store) AuditForContract(ctx context.Context, contractID string) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}
