package model

import "time"

// User is an account in the identity store.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Principal is the authenticated identity passed into every core
// operation. Core services never read auth state from ambient context.
type Principal struct {
	UserID string
	Email  string
}

// Authenticated reports whether the principal carries a resolved user id.
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}
