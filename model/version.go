package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SnapshotKind tags a version snapshot with the document type it captures.
type SnapshotKind string

const (
	SnapshotKindContract SnapshotKind = "contract"
)

// ContractSnapshot is an immutable copy of a contract's defining fields at
// a point in time. Stored as JSON; the kind tag lets the version engine
// validate snapshots instead of accepting opaque blobs.
type ContractSnapshot struct {
	Kind               SnapshotKind `json:"kind"`
	ContractNumber     string       `json:"contract_number"`
	ClientName         string       `json:"client_name"`
	ClientEmail        string       `json:"client_email"`
	ClientCompany      string       `json:"client_company,omitempty"`
	ProjectName        string       `json:"project_name"`
	ProjectDescription string       `json:"project_description"`
	ScopeOfWork        string       `json:"scope_of_work"`
	Deliverables       string       `json:"deliverables"`
	Timeline           string       `json:"timeline"`
	TotalAmount        float64      `json:"total_amount"`
	PaymentSchedule    string       `json:"payment_schedule"`
	RevisionsIncluded  int          `json:"revisions_included"`
	GoverningState     string       `json:"governing_state"`
	EffectiveDate      time.Time    `json:"effective_date"`
}

// Validate checks the snapshot carries the expected kind tag and the fields
// a contract snapshot cannot do without.
func (s ContractSnapshot) Validate() error {
	if s.Kind != SnapshotKindContract {
		return fmt.Errorf("unexpected snapshot kind %q", s.Kind)
	}
	if s.ContractNumber == "" {
		return NewValidationError("contract_number")
	}
	return nil
}

// Value serializes the snapshot to JSON for storage.
func (s ContractSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan reads the snapshot back from its JSON column.
func (s *ContractSnapshot) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported snapshot column type")
	}
}

// ContractVersion is one immutable snapshot in a contract's history.
// Version numbers per contract are strictly increasing from 1 with no gaps;
// the (contract_id, version_number) unique index backs that invariant.
type ContractVersion struct {
	ID                string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ContractID        string           `gorm:"type:varchar(36);not null;uniqueIndex:ux_contract_versions_number,priority:1" json:"contract_id"`
	UserID            string           `gorm:"type:varchar(36);not null" json:"user_id"`
	VersionNumber     int              `gorm:"not null;uniqueIndex:ux_contract_versions_number,priority:2" json:"version_number"`
	ContractData      ContractSnapshot `gorm:"type:jsonb" json:"contract_data"`
	ChangeDescription string           `json:"change_description"`
	ChangedByName     string           `json:"changed_by_name"`
	CreatedAt         time.Time        `json:"created_at"`
}

func (ContractVersion) TableName() string { return "contract_versions" }
