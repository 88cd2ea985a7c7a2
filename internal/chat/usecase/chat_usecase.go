package usecase

import (
	"errors"
	"fmt"
	"strings"

	chatdomain "ptchat-backend/internal/chat/domain"
	chatrepo "ptchat-backend/internal/chat/repository"
	profiledomain "ptchat-backend/internal/profile/domain"
	profilerepo "ptchat-backend/internal/profile/repository"

	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidPair     = errors.New("chat requires one trainer and one client")
	ErrChatNotFound    = errors.New("chat not found")
	ErrNotParticipant  = errors.New("user is not a participant of this chat")
	ErrEmptyMessage    = errors.New("message content is empty")
)

// Publisher receives every persisted message insert for realtime fan-out.
type Publisher interface {
	Publish(message chatdomain.Message)
}

// ChatUsecase defines the chat lifecycle operations
type ChatUsecase interface {
	EnsureChat(currentUserID, targetUserID string) (*chatdomain.Chat, error)
	GetChat(id string) (*chatdomain.Chat, error)
	ListMessages(chatID string) ([]chatdomain.Message, error)
	SendMessage(chatID, senderID, content string) (*chatdomain.Message, error)
}

// chatUsecase implements ChatUsecase interface
type chatUsecase struct {
	chatRepo    chatrepo.ChatRepository
	messageRepo chatrepo.MessageRepository
	profileRepo profilerepo.ProfileRepository
	publisher   Publisher
}

// NewChatUsecase creates a new instance of chatUsecase
func NewChatUsecase(chatRepo chatrepo.ChatRepository, messageRepo chatrepo.MessageRepository, profileRepo profilerepo.ProfileRepository, publisher Publisher) ChatUsecase {
	return &chatUsecase{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		publisher:   publisher,
	}
}

// EnsureChat resolves the chat between two users, creating it lazily on first
// contact. The pair is normalized by profile role, so client_id always holds
// the client and the unique index on (client_id, trainer_id) can catch a
// concurrent creation race; the loser re-reads the winner's row.
func (u *chatUsecase) EnsureChat(currentUserID, targetUserID string) (*chatdomain.Chat, error) {
	if currentUserID == targetUserID {
		return nil, ErrInvalidPair
	}

	chat, err := u.chatRepo.FindByPair(currentUserID, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up chat: %w", err)
	}
	if chat != nil {
		return chat, nil
	}

	clientID, trainerID, err := u.normalizePair(currentUserID, targetUserID)
	if err != nil {
		return nil, err
	}

	chat = &chatdomain.Chat{ClientID: clientID, TrainerID: trainerID}
	if err := u.chatRepo.Create(chat); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the first-contact race; the other party created the chat.
			return u.chatRepo.FindByPair(currentUserID, targetUserID)
		}
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	return chat, nil
}

// normalizePair assigns the client/trainer columns from the actual profile
// roles instead of trusting argument order.
func (u *chatUsecase) normalizePair(userA, userB string) (clientID, trainerID string, err error) {
	profileA, err := u.profileRepo.FindByUserID(userA)
	if err != nil {
		return "", "", fmt.Errorf("failed to load profile: %w", err)
	}
	profileB, err := u.profileRepo.FindByUserID(userB)
	if err != nil {
		return "", "", fmt.Errorf("failed to load profile: %w", err)
	}
	if profileA == nil || profileB == nil {
		return "", "", ErrProfileNotFound
	}

	switch {
	case profileA.Role == profiledomain.RoleClient && profileB.Role == profiledomain.RoleTrainer:
		return userA, userB, nil
	case profileA.Role == profiledomain.RoleTrainer && profileB.Role == profiledomain.RoleClient:
		return userB, userA, nil
	}
	return "", "", ErrInvalidPair
}

func (u *chatUsecase) GetChat(id string) (*chatdomain.Chat, error) {
	return u.chatRepo.FindByID(id)
}

func (u *chatUsecase) ListMessages(chatID string) ([]chatdomain.Message, error) {
	return u.messageRepo.ListByChat(chatID)
}

// SendMessage persists a message and publishes the insert to the realtime
// hub. Notification fan-out is not done here; it is triggered by the
// receiving chat sessions, matching the delivery flow of the chat views.
func (u *chatUsecase) SendMessage(chatID, senderID, content string) (*chatdomain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	chat, err := u.chatRepo.FindByID(chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up chat: %w", err)
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	if !chat.Participant(senderID) {
		return nil, ErrNotParticipant
	}

	message := &chatdomain.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
	}
	if err := u.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	u.publisher.Publish(*message)
	return message, nil
}
