package store

import (
	"context"

	"github.com/SVG-campus/ContractKit/model"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// CreateUser persists a new account. Duplicate emails surface as a
// translated duplicate-key error from the unique index.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Create(user).Error
}

// GetUserByEmail fetches an account by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUser fetches an account by id.
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UpsertProfile creates the profile on first save and updates it after,
// keyed by user id. Profiles are never deleted in-band.
func (s *Store) UpsertProfile(ctx context.Context, profile *model.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "company", "address_line", "city", "state", "zip_code",
			"phone", "default_payment_terms", "default_late_fee_pct", "updated_at",
		}),
	}).Create(profile).Error
}

// GetProfile fetches the account's profile, or nil when none exists yet.
func (s *Store) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	err := s.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if notFound(err) == model.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}
