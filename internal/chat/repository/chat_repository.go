package repository

import (
	"errors"
	"time"

	chatdomain "ptchat-backend/internal/chat/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRepository defines the interface for chat pairing records
type ChatRepository interface {
	FindByPair(userA, userB string) (*chatdomain.Chat, error)
	FindByID(id string) (*chatdomain.Chat, error)
	Create(chat *chatdomain.Chat) error
}

// chatRepository implements ChatRepository interface
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new instance of chatRepository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{
		db: db,
	}
}

// FindByPair looks up the chat for two users in either ordering.
func (r *chatRepository) FindByPair(userA, userB string) (*chatdomain.Chat, error) {
	var chat chatdomain.Chat
	err := r.db.
		Where("(client_id = ? AND trainer_id = ?) OR (client_id = ? AND trainer_id = ?)",
			userA, userB, userB, userA).
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) FindByID(id string) (*chatdomain.Chat, error) {
	var chat chatdomain.Chat
	err := r.db.Where("id = ?", id).First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) Create(chat *chatdomain.Chat) error {
	chat.ID = uuid.New().String()
	chat.CreatedAt = time.Now()
	return r.db.Create(chat).Error
}
