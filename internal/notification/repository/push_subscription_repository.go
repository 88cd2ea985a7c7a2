package repository

import (
	"time"

	notifdomain "ptchat-backend/internal/notification/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PushSubscriptionRepository defines the interface for push subscription rows
type PushSubscriptionRepository interface {
	SaveSubscription(userID, fcmToken, endpoint string) error
	GetTokensByUserID(userID string) ([]string, error)
	DeleteByToken(fcmToken string) error
}

// pushSubscriptionRepository implements PushSubscriptionRepository interface
type pushSubscriptionRepository struct {
	db *gorm.DB
}

// NewPushSubscriptionRepository creates a new instance of pushSubscriptionRepository
func NewPushSubscriptionRepository(db *gorm.DB) PushSubscriptionRepository {
	return &pushSubscriptionRepository{
		db: db,
	}
}

// SaveSubscription saves or updates a device registration (atomic upsert).
// The conflict key is the token, so registering an existing token under a
// different user reassigns the device instead of duplicating it.
func (r *pushSubscriptionRepository) SaveSubscription(userID, fcmToken, endpoint string) error {
	sub := &notifdomain.PushSubscription{
		ID:        uuid.New().String(),
		UserID:    userID,
		FCMToken:  fcmToken,
		Endpoint:  endpoint,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fcm_token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "endpoint", "updated_at"}),
	}).Create(sub).Error
}

// GetTokensByUserID returns every device token registered for a user.
func (r *pushSubscriptionRepository) GetTokensByUserID(userID string) ([]string, error) {
	var subs []notifdomain.PushSubscription
	err := r.db.Where("user_id = ?", userID).Find(&subs).Error
	if err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(subs))
	for _, sub := range subs {
		tokens = append(tokens, sub.FCMToken)
	}
	return tokens, nil
}

// DeleteByToken removes a device registration, used when the provider
// reports the token as no longer valid.
func (r *pushSubscriptionRepository) DeleteByToken(fcmToken string) error {
	return r.db.Where("fcm_token = ?", fcmToken).Delete(&notifdomain.PushSubscription{}).Error
}
