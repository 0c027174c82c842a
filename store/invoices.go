package store

import (
	"context"
	"time"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/google/uuid"
)

// CreateInvoice persists a new invoice. An empty id is filled in.
func (s *Store) CreateInvoice(ctx context.Context, invoice *model.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(invoice).Error
}

// GetInvoiceForUser fetches an invoice scoped to its owner.
func (s *Store) GetInvoiceForUser(ctx context.Context, id, userID string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := s.db.WithContext(ctx).First(&invoice, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &invoice, nil
}

// ListInvoices returns the owner's invoices, newest first.
func (s *Store) ListInvoices(ctx context.Context, userID string) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

// SetInvoicePDFURL records the rendered PDF location.
func (s *Store) SetInvoicePDFURL(ctx context.Context, id, url string) error {
	res := s.db.WithContext(ctx).Model(&model.Invoice{}).
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

// transitionInvoice performs a conditional status flip scoped to the owner
// and classifies a zero-row result by re-reading the current status.
func (s *Store) transitionInvoice(ctx context.Context, id, userID string, from, to model.InvoiceStatus, updates map[string]any) error {
	updates["status"] = to
	res := s.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	current, err := s.GetInvoiceForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	return &model.TransitionError{Entity: "invoice", From: string(current.Status), To: string(to)}
}

// MarkInvoiceSent transitions draft -> sent and stamps the sent time.
func (s *Store) MarkInvoiceSent(ctx context.Context, id, userID string, at time.Time) error {
	return s.transitionInvoice(ctx, id, userID, model.InvoiceDraft, model.InvoiceSent, map[string]any{
		"sent_at": at,
	})
}

// MarkInvoicePaid transitions sent -> paid and stamps the paid date.
func (s *Store) MarkInvoicePaid(ctx context.Context, id, userID string, at time.Time) error {
	return s.transitionInvoice(ctx, id, userID, model.InvoiceSent, model.InvoicePaid, map[string]any{
		"paid_date": at,
	})
}
