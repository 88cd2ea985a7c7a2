package delivery

import (
	"log"
	"net/http"

	chatdomain "ptchat-backend/internal/chat/domain"
	"ptchat-backend/internal/chat/session"
	"ptchat-backend/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// hubSubscriber adapts the realtime hub to the session's Subscriber
// interface.
type hubSubscriber struct {
	hub *realtime.Hub
}

func (s hubSubscriber) Subscribe(chatID string) session.Subscription {
	return s.hub.Subscribe(chatID)
}

type outboundFrame struct {
	Type     string               `json:"type"`
	Chat     *chatdomain.Chat     `json:"chat,omitempty"`
	Messages []chatdomain.Message `json:"messages,omitempty"`
	Message  *chatdomain.Message  `json:"message,omitempty"`
	Error    string               `json:"error,omitempty"`
}

type inboundFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Stream upgrades the request to a websocket and runs a chat session for the
// connection: one history frame, then live inserts as they arrive; inbound
// "send" frames send on behalf of the connected user.
func (h *ChatHandler) Stream(c *gin.Context) {
	userID := c.GetString("userID")
	targetUserID := c.Query("targetUserId")
	if targetUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing targetUserId"})
		return
	}

	ctrl := session.New(h.chatUsecase, hubSubscriber{h.hub}, h.dispatcher, userID, targetUserID)
	if err := ctrl.Init(); err != nil {
		status, msg := ensureChatError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == h.allowedOrigin
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Chat] Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	out := make(chan outboundFrame, 64)
	quit := make(chan struct{})
	go func() {
		for {
			select {
			case frame := <-out:
				if err := conn.WriteJSON(frame); err != nil {
					return
				}
			case <-quit:
				return
			}
		}
	}()

	out <- outboundFrame{Type: "history", Chat: ctrl.Chat(), Messages: ctrl.Messages()}

	ctrl.OnMessage = func(message chatdomain.Message) {
		select {
		case out <- outboundFrame{Type: "message", Message: &message}:
		default:
			log.Printf("[Chat] Dropping frame for slow websocket on chat %s", message.ChatID)
		}
	}
	if err := ctrl.Subscribe(); err != nil {
		log.Printf("[Chat] Subscribe failed: %v", err)
		close(quit)
		return
	}
	defer ctrl.Close()
	defer close(quit)

	for {
		var in inboundFrame
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		if in.Type != "send" {
			continue
		}
		saved, err := ctrl.Send(in.Content)
		if err != nil {
			select {
			case out <- outboundFrame{Type: "error", Error: err.Error()}:
			default:
			}
			continue
		}
		select {
		case out <- outboundFrame{Type: "sent", Message: saved}:
		default:
		}
	}
}
