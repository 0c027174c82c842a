package model

import "time"

// Profile holds the account owner's business identity and invoice
// defaults. One per account, upserted on first save.
type Profile struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID   string `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	FullName string `json:"full_name"`
	Company  string `json:"company"`

	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
	Phone       string `json:"phone"`

	DefaultPaymentTerms string  `json:"default_payment_terms"`
	DefaultLateFeePct   float64 `json:"default_late_fee_pct"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "user_profiles" }

// Address renders the mailing address as a single line, skipping empty parts.
func (p *Profile) Address() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.AddressLine, p.City, p.State, p.ZipCode} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	out := ""
	for i, s := range parts {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
