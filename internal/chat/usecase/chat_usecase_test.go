package usecase

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	chatdomain "ptchat-backend/internal/chat/domain"
	chatrepo "ptchat-backend/internal/chat/repository"
	profiledomain "ptchat-backend/internal/profile/domain"
	profilerepo "ptchat-backend/internal/profile/repository"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type capturePublisher struct {
	mu       sync.Mutex
	messages []chatdomain.Message
}

func (p *capturePublisher) Publish(message chatdomain.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&profiledomain.Profile{}, &chatdomain.Chat{}, &chatdomain.Message{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, userID, role string) {
	t.Helper()
	profile := profiledomain.Profile{
		ID:        uuid.New().String(),
		UserID:    userID,
		Email:     userID + "@example.com",
		FullName:  userID,
		Role:      role,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("Failed to seed profile: %v", err)
	}
}

func newTestUsecase(t *testing.T) (ChatUsecase, *gorm.DB, *capturePublisher) {
	t.Helper()
	db := openTestDB(t)
	seedProfile(t, db, "user-c", profiledomain.RoleClient)
	seedProfile(t, db, "user-c2", profiledomain.RoleClient)
	seedProfile(t, db, "user-t", profiledomain.RoleTrainer)

	publisher := &capturePublisher{}
	uc := NewChatUsecase(
		chatrepo.NewChatRepository(db),
		chatrepo.NewMessageRepository(db),
		profilerepo.NewProfileRepository(db),
		publisher,
	)
	return uc, db, publisher
}

func TestEnsureChatNormalizesPairByRole(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	// Trainer initiates: positional order must not decide the columns.
	chat, err := uc.EnsureChat("user-t", "user-c")
	if err != nil {
		t.Fatalf("EnsureChat failed: %v", err)
	}
	if chat.ClientID != "user-c" || chat.TrainerID != "user-t" {
		t.Errorf("Pair not normalized by role: %+v", chat)
	}
}

func TestEnsureChatIdempotentBothOrderings(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	first, err := uc.EnsureChat("user-c", "user-t")
	if err != nil {
		t.Fatalf("EnsureChat failed: %v", err)
	}
	second, err := uc.EnsureChat("user-t", "user-c")
	if err != nil {
		t.Fatalf("EnsureChat (reversed) failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("Two chats for one pair: %s vs %s", first.ID, second.ID)
	}
}

func TestEnsureChatRejectsInvalidPairs(t *testing.T) {
	uc, _, _ := newTestUsecase(t)

	if _, err := uc.EnsureChat("user-c", "user-c2"); !errors.Is(err, ErrInvalidPair) {
		t.Errorf("Two clients expected ErrInvalidPair, got %v", err)
	}
	if _, err := uc.EnsureChat("user-c", "user-c"); !errors.Is(err, ErrInvalidPair) {
		t.Errorf("Self pair expected ErrInvalidPair, got %v", err)
	}
	if _, err := uc.EnsureChat("user-c", "nobody"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("Unknown target expected ErrProfileNotFound, got %v", err)
	}
}

// racingChatRepo reproduces the concurrent first-contact window: the
// existence check misses once while another process has already inserted the
// pair, so Create hits the unique index.
type racingChatRepo struct {
	chatrepo.ChatRepository
	missOnce sync.Once
	missed   bool
}

func (r *racingChatRepo) FindByPair(userA, userB string) (*chatdomain.Chat, error) {
	var miss bool
	r.missOnce.Do(func() {
		miss = true
		r.missed = true
	})
	if miss {
		return nil, nil
	}
	return r.ChatRepository.FindByPair(userA, userB)
}

func TestEnsureChatSurvivesCreationRace(t *testing.T) {
	db := openTestDB(t)
	seedProfile(t, db, "user-c", profiledomain.RoleClient)
	seedProfile(t, db, "user-t", profiledomain.RoleTrainer)

	chats := chatrepo.NewChatRepository(db)
	winner := &chatdomain.Chat{ClientID: "user-c", TrainerID: "user-t"}
	if err := chats.Create(winner); err != nil {
		t.Fatalf("Failed to create winner chat: %v", err)
	}

	racing := &racingChatRepo{ChatRepository: chats}
	uc := NewChatUsecase(racing, chatrepo.NewMessageRepository(db), profilerepo.NewProfileRepository(db), &capturePublisher{})

	chat, err := uc.EnsureChat("user-c", "user-t")
	if err != nil {
		t.Fatalf("EnsureChat failed after losing the race: %v", err)
	}
	if !racing.missed {
		t.Fatal("Race window never exercised")
	}
	if chat == nil || chat.ID != winner.ID {
		t.Errorf("Loser did not adopt the winner's chat: %+v", chat)
	}

	var count int64
	db.Model(&chatdomain.Chat{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly one chat row, got %d", count)
	}
}

func TestChatPairUniqueIndex(t *testing.T) {
	db := openTestDB(t)
	chats := chatrepo.NewChatRepository(db)

	if err := chats.Create(&chatdomain.Chat{ClientID: "a", TrainerID: "b"}); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	err := chats.Create(&chatdomain.Chat{ClientID: "a", TrainerID: "b"})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("Expected duplicated key error, got %v", err)
	}
}

func TestSendMessageValidatesAndPublishes(t *testing.T) {
	uc, _, publisher := newTestUsecase(t)
	chat, err := uc.EnsureChat("user-c", "user-t")
	if err != nil {
		t.Fatalf("EnsureChat failed: %v", err)
	}

	if _, err := uc.SendMessage(chat.ID, "user-c", "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Whitespace content expected ErrEmptyMessage, got %v", err)
	}
	if _, err := uc.SendMessage(chat.ID, "user-c2", "hi"); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("Outsider expected ErrNotParticipant, got %v", err)
	}
	if _, err := uc.SendMessage("missing", "user-c", "hi"); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("Unknown chat expected ErrChatNotFound, got %v", err)
	}
	if publisher.count() != 0 {
		t.Fatalf("Rejected sends must not publish, got %d", publisher.count())
	}

	msg, err := uc.SendMessage(chat.ID, "user-c", "  Hi  ")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.Content != "Hi" {
		t.Errorf("Expected trimmed content, got %q", msg.Content)
	}
	if publisher.count() != 1 {
		t.Errorf("Expected one published insert, got %d", publisher.count())
	}
}

func TestListMessagesOrderedAndStable(t *testing.T) {
	uc, _, _ := newTestUsecase(t)
	chat, err := uc.EnsureChat("user-c", "user-t")
	if err != nil {
		t.Fatalf("EnsureChat failed: %v", err)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		msg, err := uc.SendMessage(chat.ID, "user-c", fmt.Sprintf("msg %d", i))
		if err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
		ids = append(ids, msg.ID)
		time.Sleep(2 * time.Millisecond) // distinct created_at for ordering
	}

	first, err := uc.ListMessages(chat.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	second, err := uc.ListMessages(chat.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("Expected 3 messages, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != ids[i] {
			t.Errorf("Out of order at %d: %s vs %s", i, first[i].ID, ids[i])
		}
		if first[i].ID != second[i].ID {
			t.Errorf("Reload changed order at %d", i)
		}
	}
}
