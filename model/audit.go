package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Audit action tags.
const (
	ActionContractCreated = "contract_created"
	ActionContractSent    = "contract_sent"
	ActionContractSigned  = "contract_signed"
	ActionContractUpdated = "contract_updated"
	ActionInvoiceCreated  = "invoice_created"
	ActionInvoiceSent     = "invoice_sent"
	ActionPaymentReceived = "payment_received"
	ActionPDFGenerated    = "pdf_generated"
)

// AuditDetails is the free-form structured payload of an audit entry.
type AuditDetails map[string]any

// Value serializes the details to JSON for storage.
func (d AuditDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan reads the details back from their JSON column.
func (d *AuditDetails) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return errors.New("unsupported audit details column type")
	}
}

// AuditLog is one append-only record of a state-changing action.
// Rows are never updated or deleted.
type AuditLog struct {
	ID         string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ContractID *string      `gorm:"type:varchar(36);index" json:"contract_id,omitempty"`
	InvoiceID  *string      `gorm:"type:varchar(36);index" json:"invoice_id,omitempty"`
	Action     string       `gorm:"type:varchar(32);not null;index" json:"action"`
	Details    AuditDetails `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
