package model

import "time"

// Signature is one signing event. At most one row exists per contract,
// enforced by the contract status gate at signing time.
type Signature struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ContractID    string    `gorm:"type:varchar(36);not null;index" json:"contract_id"`
	SignerName    string    `gorm:"not null" json:"signer_name"`
	SignerEmail   string    `json:"signer_email"`
	SignatureText string    `gorm:"not null" json:"signature_text"`
	IPAddress     string    `json:"ip_address"`
	UserAgent     string    `json:"user_agent"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Signature) TableName() string { return "contract_signatures" }
