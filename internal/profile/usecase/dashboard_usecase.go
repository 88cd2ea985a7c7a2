package usecase

import (
	"errors"
	"fmt"

	profiledomain "ptchat-backend/internal/profile/domain"
	profilerepo "ptchat-backend/internal/profile/repository"
)

var ErrProfileNotFound = errors.New("profile not found")

// DashboardUsecase resolves the caller's profile and the role-appropriate
// peer list: a trainer sees every client, a client sees the (single,
// globally-shared) trainer.
type DashboardUsecase interface {
	GetProfile(userID string) (*profiledomain.Profile, error)
	GetPeers(userID string) (*profiledomain.Profile, []profiledomain.Profile, error)
}

// dashboardUsecase implements DashboardUsecase interface
type dashboardUsecase struct {
	profileRepo profilerepo.ProfileRepository
}

// NewDashboardUsecase creates a new instance of dashboardUsecase
func NewDashboardUsecase(profileRepo profilerepo.ProfileRepository) DashboardUsecase {
	return &dashboardUsecase{
		profileRepo: profileRepo,
	}
}

func (u *dashboardUsecase) GetProfile(userID string) (*profiledomain.Profile, error) {
	profile, err := u.profileRepo.FindByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// GetPeers returns the caller's profile together with the selectable peers
// for their role. A client with no trainer assigned gets an empty list, not
// an error.
func (u *dashboardUsecase) GetPeers(userID string) (*profiledomain.Profile, []profiledomain.Profile, error) {
	profile, err := u.GetProfile(userID)
	if err != nil {
		return nil, nil, err
	}

	if profile.IsTrainer() {
		clients, err := u.profileRepo.FindClients()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load clients: %w", err)
		}
		return profile, clients, nil
	}

	trainer, err := u.profileRepo.FindTrainer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load trainer: %w", err)
	}
	if trainer == nil {
		return profile, []profiledomain.Profile{}, nil
	}
	return profile, []profiledomain.Profile{*trainer}, nil
}
