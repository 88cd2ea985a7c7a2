package realtime

import (
	"log"
	"sync"

	chatdomain "ptchat-backend/internal/chat/domain"
)

// Hub fans persisted message inserts out to the open chat sessions. Rooms are
// keyed by chat id; every subscription receives each publish for its chat
// exactly once, in publish order.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe opens a channel of inserts for one chat id. The caller owns the
// returned subscription and must Close it to stop delivery.
func (h *Hub) Subscribe(chatID string) *Subscription {
	sub := &Subscription{
		hub:    h,
		chatID: chatID,
		events: make(chan chatdomain.Message, subscriptionBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[chatID]
	if !ok {
		room = make(map[*Subscription]struct{})
		h.rooms[chatID] = room
	}
	room[sub] = struct{}{}

	return sub
}

// Publish delivers a persisted message to every subscription of its chat.
// A subscriber that has fallen behind its buffer misses the event rather
// than blocking the publisher.
func (h *Hub) Publish(message chatdomain.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[message.ChatID] {
		select {
		case sub.events <- message:
		default:
			log.Printf("[Realtime] Dropping event for slow subscriber on chat %s", message.ChatID)
		}
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[sub.chatID]
	if !ok {
		return
	}
	if _, ok := room[sub]; !ok {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(h.rooms, sub.chatID)
	}
	// Safe to close here: Publish only sends while holding the read lock.
	close(sub.events)
}

const subscriptionBuffer = 32

// Subscription is one live feed of inserts for a chat. Events is closed by
// Close, so consumers can range over it.
type Subscription struct {
	hub    *Hub
	chatID string
	events chan chatdomain.Message
	once   sync.Once
}

func (s *Subscription) Events() <-chan chatdomain.Message {
	return s.events
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}
