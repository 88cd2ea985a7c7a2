package notification

import (
	"context"
	"errors"
	"log"
	"sync"

	notifrepo "ptchat-backend/internal/notification/repository"
	profilerepo "ptchat-backend/internal/profile/repository"
	"ptchat-backend/pkg/fcm"
	"ptchat-backend/pkg/mail"
)

// ErrNoSubscription is returned when a push recipient has no registered
// device tokens.
var ErrNoSubscription = errors.New("no subscription found")

// Pusher sends a notification to a batch of device tokens. *fcm.Client
// satisfies it; tests substitute a fake.
type Pusher interface {
	SendToDevices(ctx context.Context, tokens []string, n fcm.MessageNotification) (successCount int, failedTokens []string, err error)
}

// Mailer sends the fallback email for a message. *mail.Service satisfies it.
type Mailer interface {
	SendNewMessage(ctx context.Context, email mail.NewMessageEmail) (string, error)
}

// Service is the one notification coordinator of the process. It is injected
// rather than global so tests can substitute fakes for the providers.
type Service struct {
	subs     notifrepo.PushSubscriptionRepository
	profiles profilerepo.ProfileRepository
	pusher   Pusher
	mailer   Mailer
}

// NewService creates the notification coordinator. pusher and mailer may be
// nil when the corresponding provider credentials are not configured; that
// channel is then skipped.
func NewService(subs notifrepo.PushSubscriptionRepository, profiles profilerepo.ProfileRepository, pusher Pusher, mailer Mailer) *Service {
	return &Service{
		subs:     subs,
		profiles: profiles,
		pusher:   pusher,
		mailer:   mailer,
	}
}

// PushEnabled reports whether a push provider is configured.
func (s *Service) PushEnabled() bool {
	return s.pusher != nil
}

// SaveSubscription upserts a device registration keyed on its token.
func (s *Service) SaveSubscription(userID, fcmToken, endpoint string) error {
	return s.subs.SaveSubscription(userID, fcmToken, endpoint)
}

// SendPush delivers a push notification to every device of the recipient.
// Per-token failures are logged and their tokens removed; the overall result
// is success when at least one device accepted the message.
func (s *Service) SendPush(ctx context.Context, recipientID, senderName, message, chatID string) (bool, error) {
	if s.pusher == nil {
		return false, errors.New("push provider not configured")
	}

	tokens, err := s.subs.GetTokensByUserID(recipientID)
	if err != nil {
		return false, err
	}
	if len(tokens) == 0 {
		return false, ErrNoSubscription
	}

	successCount, failedTokens, err := s.pusher.SendToDevices(ctx, tokens, fcm.MessageNotification{
		SenderName: senderName,
		Body:       message,
		ChatID:     chatID,
	})
	if err != nil {
		return false, err
	}

	// Stale tokens fail on send; drop them so the rows do not pile up.
	for _, token := range failedTokens {
		if err := s.subs.DeleteByToken(token); err != nil {
			log.Printf("[Notification] Failed to clean up stale token: %v", err)
		}
	}

	return successCount > 0, nil
}

// SendEmail sends the fallback email and returns the provider-assigned id.
func (s *Service) SendEmail(ctx context.Context, email mail.NewMessageEmail) (string, error) {
	if s.mailer == nil {
		return "", errors.New("email provider not configured")
	}
	return s.mailer.SendNewMessage(ctx, email)
}

// DispatchNewMessage runs the side-effect fan-out for a received chat
// message: a push notification and a fallback email to the recipient. The
// two effects are independent and unordered; failures are logged and never
// propagate back to the message flow.
func (s *Service) DispatchNewMessage(ctx context.Context, recipientUserID, senderUserID, content, chatID string) {
	recipient, err := s.profiles.FindByUserID(recipientUserID)
	if err != nil || recipient == nil {
		log.Printf("[Notification] Recipient profile %s unavailable: %v", recipientUserID, err)
		return
	}
	sender, err := s.profiles.FindByUserID(senderUserID)
	if err != nil || sender == nil {
		log.Printf("[Notification] Sender profile %s unavailable: %v", senderUserID, err)
		return
	}
	senderName := sender.FullName
	if senderName == "" {
		senderName = "Someone"
	}

	var wg sync.WaitGroup

	if s.pusher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.SendPush(ctx, recipientUserID, senderName, content, chatID)
			if err != nil && !errors.Is(err, ErrNoSubscription) {
				log.Printf("[Notification] Push dispatch failed for %s: %v", recipientUserID, err)
			} else if ok {
				log.Printf("[Notification] Push delivered to %s", recipientUserID)
			}
		}()
	}

	if s.mailer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.SendEmail(ctx, mail.NewMessageEmail{
				To:            recipient.Email,
				RecipientName: recipient.FullName,
				SenderName:    senderName,
				Message:       content,
			})
			if err != nil {
				log.Printf("[Notification] Email dispatch failed for %s: %v", recipient.Email, err)
			}
		}()
	}

	wg.Wait()
}
