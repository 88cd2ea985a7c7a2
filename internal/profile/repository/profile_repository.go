package repository

import (
	"errors"

	profiledomain "ptchat-backend/internal/profile/domain"

	"gorm.io/gorm"
)

// ProfileRepository defines read access to profiles. Profiles are owned by
// the identity provider; this service never writes them.
type ProfileRepository interface {
	FindByUserID(userID string) (*profiledomain.Profile, error)
	FindClients() ([]profiledomain.Profile, error)
	FindTrainer() (*profiledomain.Profile, error)
}

// profileRepository implements ProfileRepository interface
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new instance of profileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{
		db: db,
	}
}

func (r *profileRepository) FindByUserID(userID string) (*profiledomain.Profile, error) {
	var profile profiledomain.Profile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// FindClients returns every profile with the client role, for the trainer's
// peer list.
func (r *profileRepository) FindClients() ([]profiledomain.Profile, error) {
	var profiles []profiledomain.Profile
	err := r.db.Where("role = ?", profiledomain.RoleClient).Order("created_at asc").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// FindTrainer returns the trainer profile. The deployment assumes a single
// globally-shared trainer, so the first row by creation time wins.
func (r *profileRepository) FindTrainer() (*profiledomain.Profile, error) {
	var profile profiledomain.Profile
	err := r.db.Where("role = ?", profiledomain.RoleTrainer).Order("created_at asc").First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}
