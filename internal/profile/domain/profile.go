package domain

import "time"

const (
	RoleTrainer = "trainer"
	RoleClient  = "client"
)

// Profile is the identity record for an authenticated user. Profiles are
// created at signup by the identity provider and are read-only here; the role
// is immutable once assigned.
type Profile struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"not null"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role" gorm:"not null"` // "trainer" or "client"
	CreatedAt time.Time `json:"created_at"`
}

func (p *Profile) IsTrainer() bool {
	return p.Role == RoleTrainer
}
