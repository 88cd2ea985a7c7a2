package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	chatdomain "ptchat-backend/internal/chat/domain"

	"github.com/google/uuid"
)

var (
	ErrNotInitialized    = errors.New("session not initialized")
	ErrAlreadySubscribed = errors.New("session already has an active subscription")
	ErrEmptyMessage      = errors.New("message content is empty")
)

// TempIDPrefix marks a locally appended message that has not been persisted
// yet. Pending entries are reconciled against the server row by this id,
// never by content, so rapid duplicate sends stay unambiguous.
const TempIDPrefix = "temp-"

// Store is the persistence surface the session needs. The chat usecase
// satisfies it.
type Store interface {
	EnsureChat(currentUserID, targetUserID string) (*chatdomain.Chat, error)
	ListMessages(chatID string) ([]chatdomain.Message, error)
	SendMessage(chatID, senderID, content string) (*chatdomain.Message, error)
}

// Subscription is one live feed of message inserts for a chat.
type Subscription interface {
	Events() <-chan chatdomain.Message
	Close()
}

// Subscriber opens realtime subscriptions keyed by chat id.
type Subscriber interface {
	Subscribe(chatID string) Subscription
}

// Dispatcher triggers the push/email side effects for a received message.
// Implementations are best-effort; the session never waits on them.
type Dispatcher interface {
	DispatchNewMessage(ctx context.Context, recipientUserID, senderUserID, content, chatID string)
}

// Controller drives one chat session between the local user and a peer:
// chat discovery/creation, history load, optimistic sends reconciled against
// the server echo, and the realtime subscription with notification fan-out
// for messages authored by the peer.
type Controller struct {
	store      Store
	subscriber Subscriber
	dispatcher Dispatcher

	currentUserID string
	targetUserID  string

	// OnMessage, when set before Subscribe, is invoked for every message the
	// session appends from the realtime feed. Used by the websocket delivery
	// layer to forward events to the connected client.
	OnMessage func(chatdomain.Message)

	mu       sync.Mutex
	chat     *chatdomain.Chat
	messages []chatdomain.Message
	seen     map[string]bool
	sub      Subscription
	done     chan struct{}
}

func New(store Store, subscriber Subscriber, dispatcher Dispatcher, currentUserID, targetUserID string) *Controller {
	return &Controller{
		store:         store,
		subscriber:    subscriber,
		dispatcher:    dispatcher,
		currentUserID: currentUserID,
		targetUserID:  targetUserID,
		seen:          make(map[string]bool),
	}
}

// Init resolves or creates the chat for the pair and loads the full ordered
// history. On failure the session holds no partial state and Init can be
// retried.
func (c *Controller) Init() error {
	chat, err := c.store.EnsureChat(c.currentUserID, c.targetUserID)
	if err != nil {
		return fmt.Errorf("failed to initialize chat: %w", err)
	}
	if chat == nil {
		return fmt.Errorf("failed to initialize chat: no chat for pair")
	}

	messages, err := c.store.ListMessages(chat.ID)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.chat = chat
	c.messages = messages
	c.seen = make(map[string]bool, len(messages))
	for _, m := range messages {
		c.seen[m.ID] = true
	}
	return nil
}

// Chat returns the resolved chat record, or nil before Init.
func (c *Controller) Chat() *chatdomain.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chat
}

// Messages returns a copy of the current ordered message list, including any
// pending optimistic entries.
func (c *Controller) Messages() []chatdomain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]chatdomain.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Subscribe opens the realtime feed for the session's chat. At most one
// subscription is active per session; callers must Close before subscribing
// again.
func (c *Controller) Subscribe() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chat == nil {
		return ErrNotInitialized
	}
	if c.sub != nil {
		return ErrAlreadySubscribed
	}

	c.sub = c.subscriber.Subscribe(c.chat.ID)
	c.done = make(chan struct{})
	go c.pump(c.sub, c.done)
	return nil
}

func (c *Controller) pump(sub Subscription, done chan struct{}) {
	defer close(done)
	for message := range sub.Events() {
		c.handleEvent(message)
	}
}

// handleEvent appends a realtime insert at most once. A message authored by
// the peer additionally triggers the notification side effects, detached
// from the event loop.
func (c *Controller) handleEvent(message chatdomain.Message) {
	c.mu.Lock()
	if c.seen[message.ID] {
		c.mu.Unlock()
		return
	}
	c.seen[message.ID] = true
	c.messages = append(c.messages, message)
	onMessage := c.OnMessage
	c.mu.Unlock()

	if onMessage != nil {
		onMessage(message)
	}

	if message.SenderID != c.currentUserID && c.dispatcher != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			c.dispatcher.DispatchNewMessage(ctx, c.currentUserID, message.SenderID, message.Content, message.ChatID)
		}()
	}
}

// Send appends a pending entry for immediate display, persists the message,
// and reconciles the pending entry with the server row by temp id. On
// failure the pending entry is removed and the original content is returned
// so the caller can restore its input.
func (c *Controller) Send(content string) (*chatdomain.Message, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.chat == nil {
		c.mu.Unlock()
		return nil, ErrNotInitialized
	}
	chatID := c.chat.ID
	temp := chatdomain.Message{
		ID:        TempIDPrefix + uuid.New().String(),
		ChatID:    chatID,
		SenderID:  c.currentUserID,
		Content:   trimmed,
		CreatedAt: time.Now(),
	}
	c.messages = append(c.messages, temp)
	c.mu.Unlock()

	saved, err := c.store.SendMessage(chatID, c.currentUserID, trimmed)
	if err != nil {
		c.removeByID(temp.ID)
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[saved.ID] {
		// The realtime echo arrived before the insert response; the server
		// row is already in the list, so the pending entry just goes away.
		c.removeByIDLocked(temp.ID)
		return saved, nil
	}
	c.seen[saved.ID] = true
	for i := range c.messages {
		if c.messages[i].ID == temp.ID {
			c.messages[i] = *saved
			return saved, nil
		}
	}
	c.messages = append(c.messages, *saved)
	return saved, nil
}

func (c *Controller) removeByID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeByIDLocked(id)
}

func (c *Controller) removeByIDLocked(id string) {
	for i := range c.messages {
		if c.messages[i].ID == id {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			return
		}
	}
}

// Close tears down the realtime subscription. The session can subscribe
// again afterwards, e.g. on a view re-mount.
func (c *Controller) Close() {
	c.mu.Lock()
	sub := c.sub
	done := c.done
	c.sub = nil
	c.done = nil
	c.mu.Unlock()

	if sub == nil {
		return
	}
	sub.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		log.Printf("[Session] Timed out waiting for event pump on chat teardown")
	}
}
