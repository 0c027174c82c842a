package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft InvoiceStatus = "draft"
	InvoiceSent  InvoiceStatus = "sent"
	InvoicePaid  InvoiceStatus = "paid"

	// InvoiceOverdue is derived at read time, never stored.
	InvoiceOverdue InvoiceStatus = "overdue"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft: {InvoiceSent},
	InvoiceSent:  {InvoicePaid},
}

// CanTransition reports whether from -> to is a legal invoice status change.
func (s InvoiceStatus) CanTransition(to InvoiceStatus) bool {
	for _, next := range invoiceTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// LineItem is one billable row on an invoice.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// LineItems stores the invoice rows as a JSON column.
type LineItems []LineItem

// Value serializes the line items to JSON for storage.
func (p LineItems) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan reads the line items back from their JSON column.
func (p *LineItems) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return errors.New("unsupported line items column type")
	}
}

// Invoice represents one billing request.
type Invoice struct {
	ID            string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID        string        `gorm:"type:varchar(36);not null;index" json:"user_id"`
	InvoiceNumber string        `gorm:"uniqueIndex;not null" json:"invoice_number"`
	Status        InvoiceStatus `gorm:"type:varchar(16);not null;default:'draft'" json:"status"`

	ClientName    string `gorm:"not null" json:"client_name"`
	ClientEmail   string `gorm:"not null" json:"client_email"`
	ClientCompany string `json:"client_company,omitempty"`

	LineItems LineItems `gorm:"type:jsonb" json:"line_items"`
	Subtotal  float64   `json:"subtotal"`
	TaxRate   float64   `json:"tax_rate"`
	TaxAmount float64   `json:"tax_amount"`
	Total     float64   `json:"total"`

	PaymentTerms        string    `json:"payment_terms"`
	InvoiceDate         time.Time `json:"invoice_date"`
	DueDate             time.Time `json:"due_date"`
	Notes               string    `json:"notes,omitempty"`
	PaymentInstructions string    `json:"payment_instructions,omitempty"`

	PDFURL   *string    `gorm:"column:pdf_url" json:"pdf_url"`
	SentAt   *time.Time `json:"sent_at"`
	PaidDate *time.Time `json:"paid_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

// roundCents rounds to two decimal places.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeTotals recalculates per-line amounts, subtotal, tax and total.
// amount = quantity x rate, taxAmount = subtotal x taxRate/100.
func (inv *Invoice) ComputeTotals() {
	var subtotal float64
	for i := range inv.LineItems {
		item := &inv.LineItems[i]
		item.Amount = roundCents(item.Quantity * item.Rate)
		subtotal += item.Amount
	}
	inv.Subtotal = roundCents(subtotal)
	inv.TaxAmount = roundCents(inv.Subtotal * inv.TaxRate / 100)
	inv.Total = roundCents(inv.Subtotal + inv.TaxAmount)
}

// DisplayStatus derives overdue for sent invoices past their due date.
// The stored status never holds overdue.
func (inv *Invoice) DisplayStatus(now time.Time) InvoiceStatus {
	if inv.Status == InvoiceSent && now.After(inv.DueDate) {
		return InvoiceOverdue
	}
	return inv.Status
}
