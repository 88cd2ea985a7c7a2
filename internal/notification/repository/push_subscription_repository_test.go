package repository

import (
	"fmt"
	"testing"

	notifdomain "ptchat-backend/internal/notification/domain"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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
	if err := db.AutoMigrate(&notifdomain.PushSubscription{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestSaveSubscriptionUpsertsByToken(t *testing.T) {
	db := openTestDB(t)
	repo := NewPushSubscriptionRepository(db)

	if err := repo.SaveSubscription("user-1", "token-a", "https://fcm.example/endpoint"); err != nil {
		t.Fatalf("SaveSubscription failed: %v", err)
	}
	// Same device token registered by a different user: the row is
	// reassigned, not duplicated.
	if err := repo.SaveSubscription("user-2", "token-a", "https://fcm.example/endpoint"); err != nil {
		t.Fatalf("Second SaveSubscription failed: %v", err)
	}

	var count int64
	db.Model(&notifdomain.PushSubscription{}).Where("fcm_token = ?", "token-a").Count(&count)
	if count != 1 {
		t.Fatalf("Expected exactly one row for the token, got %d", count)
	}

	tokens, err := repo.GetTokensByUserID("user-2")
	if err != nil {
		t.Fatalf("GetTokensByUserID failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "token-a" {
		t.Errorf("Token not owned by the second user: %v", tokens)
	}

	tokens, err = repo.GetTokensByUserID("user-1")
	if err != nil {
		t.Fatalf("GetTokensByUserID failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("First user still owns the reassigned token: %v", tokens)
	}
}

func TestMultiDeviceTokens(t *testing.T) {
	db := openTestDB(t)
	repo := NewPushSubscriptionRepository(db)

	for i := 0; i < 3; i++ {
		if err := repo.SaveSubscription("user-1", fmt.Sprintf("token-%d", i), ""); err != nil {
			t.Fatalf("SaveSubscription failed: %v", err)
		}
	}

	tokens, err := repo.GetTokensByUserID("user-1")
	if err != nil {
		t.Fatalf("GetTokensByUserID failed: %v", err)
	}
	if len(tokens) != 3 {
		t.Errorf("Expected 3 device tokens, got %d", len(tokens))
	}
}

func TestDeleteByToken(t *testing.T) {
	db := openTestDB(t)
	repo := NewPushSubscriptionRepository(db)

	if err := repo.SaveSubscription("user-1", "token-stale", ""); err != nil {
		t.Fatalf("SaveSubscription failed: %v", err)
	}
	if err := repo.DeleteByToken("token-stale"); err != nil {
		t.Fatalf("DeleteByToken failed: %v", err)
	}

	tokens, err := repo.GetTokensByUserID("user-1")
	if err != nil {
		t.Fatalf("GetTokensByUserID failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("Stale token still present: %v", tokens)
	}
}
