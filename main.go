package main

import (
	"log"

	api "ptchat-backend/cmd/api"
	authUsecase "ptchat-backend/internal/auth/usecase"
	chatDelivery "ptchat-backend/internal/chat/delivery"
	chatdomain "ptchat-backend/internal/chat/domain"
	chatRepo "ptchat-backend/internal/chat/repository"
	chatUsecase "ptchat-backend/internal/chat/usecase"
	"ptchat-backend/internal/notification"
	notifDelivery "ptchat-backend/internal/notification/delivery"
	notifdomain "ptchat-backend/internal/notification/domain"
	notifRepo "ptchat-backend/internal/notification/repository"
	profileDelivery "ptchat-backend/internal/profile/delivery"
	profiledomain "ptchat-backend/internal/profile/domain"
	profileRepo "ptchat-backend/internal/profile/repository"
	profileUsecase "ptchat-backend/internal/profile/usecase"
	"ptchat-backend/internal/realtime"
	"ptchat-backend/pkg/config"
	"ptchat-backend/pkg/database"
	"ptchat-backend/pkg/fcm"
	"ptchat-backend/pkg/mail"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&profiledomain.Profile{}, &chatdomain.Chat{}, &chatdomain.Message{}, &notifdomain.PushSubscription{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	profiles := profileRepo.NewProfileRepository(db)
	chats := chatRepo.NewChatRepository(db)
	messages := chatRepo.NewMessageRepository(db)
	pushSubs := notifRepo.NewPushSubscriptionRepository(db)

	// Realtime hub for open chat sessions
	hub := realtime.NewHub()

	// FCM client (optional; push notifications are disabled without it)
	var pusher notification.Pusher
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			pusher = fcmClient
		}
	} else {
		log.Printf("[WARN] No Firebase credentials configured, push notifications disabled")
	}

	// Resend client (optional; fallback emails are disabled without it)
	var mailer notification.Mailer
	if cfg.ResendAPIKey != "" {
		mailer = mail.NewService(cfg.ResendAPIKey, cfg.EmailFrom)
	} else {
		log.Printf("[WARN] No Resend API key configured, fallback emails disabled")
	}

	notifService := notification.NewService(pushSubs, profiles, pusher, mailer)

	// Initialize use cases (dependency injection)
	authUc := authUsecase.NewAuthUsecase(cfg)
	chatUc := chatUsecase.NewChatUsecase(chats, messages, profiles, hub)
	dashboardUc := profileUsecase.NewDashboardUsecase(profiles)

	// Initialize HTTP handler
	handler := api.NewHandler(
		cfg,
		authUc,
		chatDelivery.NewChatHandler(chatUc, hub, notifService, cfg.CORSOrigin),
		profileDelivery.NewProfileHandler(dashboardUc),
		notifDelivery.NewNotificationHandler(notifService, cfg.VAPIDPublicKey),
	)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
