package domain

import "time"

// Chat pairs one client with one trainer. At most one chat exists per pair;
// the composite unique index makes concurrent first-contact creation safe
// (the loser of the race re-reads the winner's row).
type Chat struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ClientID  string    `json:"client_id" gorm:"uniqueIndex:idx_chat_pair;not null"`
	TrainerID string    `json:"trainer_id" gorm:"uniqueIndex:idx_chat_pair;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is immutable once created and displayed ordered by created_at
// ascending, using the timestamp assigned at insert time.
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ChatID    string    `json:"chat_id" gorm:"index;not null"`
	SenderID  string    `json:"sender_id" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Participant reports whether userID is one of the two chat parties.
func (c *Chat) Participant(userID string) bool {
	return c.ClientID == userID || c.TrainerID == userID
}

// PeerOf returns the other party of the chat, or "" when userID is not a
// participant.
func (c *Chat) PeerOf(userID string) string {
	switch userID {
	case c.ClientID:
		return c.TrainerID
	case c.TrainerID:
		return c.ClientID
	}
	return ""
}
