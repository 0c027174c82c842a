package model

import (
	"time"
)

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	ContractDraft     ContractStatus = "draft"
	ContractSent      ContractStatus = "sent"
	ContractSigned    ContractStatus = "signed"
	ContractCancelled ContractStatus = "cancelled"
)

// contractTransitions is the enforced transition table. signed and
// cancelled are terminal. Signing is only reachable from sent; a draft
// contract must be sent to the client first.
var contractTransitions = map[ContractStatus][]ContractStatus{
	ContractDraft: {ContractSent, ContractCancelled},
	ContractSent:  {ContractSigned, ContractCancelled},
}

// CanTransition reports whether from -> to is a legal contract status change.
func (s ContractStatus) CanTransition(to ContractStatus) bool {
	for _, next := range contractTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s ContractStatus) Terminal() bool {
	return len(contractTransitions[s]) == 0
}

// Contract represents one service agreement.
type Contract struct {
	ID             string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID         string         `gorm:"type:varchar(36);not null;index" json:"user_id"`
	ContractNumber string         `gorm:"uniqueIndex;not null" json:"contract_number"`
	Status         ContractStatus `gorm:"type:varchar(16);not null;default:'draft'" json:"status"`

	ClientName    string `gorm:"not null" json:"client_name"`
	ClientEmail   string `gorm:"not null" json:"client_email"`
	ClientCompany string `json:"client_company,omitempty"`

	ProjectName        string    `json:"project_name"`
	ProjectDescription string    `json:"project_description"`
	ScopeOfWork        string    `json:"scope_of_work"`
	Deliverables       string    `json:"deliverables"`
	Timeline           string    `json:"timeline"`
	TotalAmount        float64   `json:"total_amount"`
	PaymentSchedule    string    `json:"payment_schedule"`
	RevisionsIncluded  int       `json:"revisions_included"`
	GoverningState     string    `json:"governing_state"`
	EffectiveDate      time.Time `json:"effective_date"`

	PDFURL *string    `gorm:"column:pdf_url" json:"pdf_url"`
	SentAt *time.Time `json:"sent_at"`

	// Signature capture; all nil until the client signs.
	ClientSignature *string    `json:"client_signature"`
	ClientSignedAt  *time.Time `json:"client_signed_at"`
	ClientIPAddress *string    `gorm:"column:client_ip_address" json:"client_ip_address"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contract) TableName() string { return "contracts" }

// Snapshot captures the contract-defining fields for version history.
func (c *Contract) Snapshot() ContractSnapshot {
	return ContractSnapshot{
		Kind:               SnapshotKindContract,
		ContractNumber:     c.ContractNumber,
		ClientName:         c.ClientName,
		ClientEmail:        c.ClientEmail,
		ClientCompany:      c.ClientCompany,
		ProjectName:        c.ProjectName,
		ProjectDescription: c.ProjectDescription,
		ScopeOfWork:        c.ScopeOfWork,
		Deliverables:       c.Deliverables,
		Timeline:           c.Timeline,
		TotalAmount:        c.TotalAmount,
		PaymentSchedule:    c.PaymentSchedule,
		RevisionsIncluded:  c.RevisionsIncluded,
		GoverningState:     c.GoverningState,
		EffectiveDate:      c.EffectiveDate,
	}
}
