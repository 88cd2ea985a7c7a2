package repository

import (
	"time"

	chatdomain "ptchat-backend/internal/chat/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for message rows. Messages are
// append-only; there is no update or delete.
type MessageRepository interface {
	Create(message *chatdomain.Message) error
	ListByChat(chatID string) ([]chatdomain.Message, error)
}

// messageRepository implements MessageRepository interface
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new instance of messageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

func (r *messageRepository) Create(message *chatdomain.Message) error {
	message.ID = uuid.New().String()
	message.CreatedAt = time.Now()
	return r.db.Create(message).Error
}

// ListByChat returns the full history of a chat ordered by created_at
// ascending, the display order.
func (r *messageRepository) ListByChat(chatID string) ([]chatdomain.Message, error) {
	var messages []chatdomain.Message
	err := r.db.Where("chat_id = ?", chatID).Order("created_at asc").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
