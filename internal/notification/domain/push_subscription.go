package domain

import "time"

// PushSubscription represents one registered device of a user. A user may
// hold several rows (multi-device); the token itself is unique, so
// re-registering a token under a different user reassigns it instead of
// duplicating the device.
type PushSubscription struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	FCMToken  string    `json:"-" gorm:"column:fcm_token;uniqueIndex;not null"` // Don't expose token in JSON
	Endpoint  string    `json:"endpoint"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
