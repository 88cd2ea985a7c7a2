package mail

import (
	"strings"
	"testing"
)

func TestRenderNewMessageBodyEscapesContent(t *testing.T) {
	body, err := RenderNewMessageBody(NewMessageEmail{
		To:            "c@example.com",
		RecipientName: "Casey",
		SenderName:    "Taylor",
		Message:       `<script>alert(1)</script>`,
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if strings.Contains(body, "<script>") {
		t.Error("Message content must be escaped in the email body")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("Expected escaped message content, got: %s", body)
	}
	if !strings.Contains(body, "New Message from Taylor") {
		t.Error("Expected sender name in heading")
	}
	if !strings.Contains(body, "Hi Casey") {
		t.Error("Expected recipient name in greeting")
	}
}

func TestRenderNewMessageBodyFallbackGreeting(t *testing.T) {
	body, err := RenderNewMessageBody(NewMessageEmail{
		To:         "c@example.com",
		SenderName: "Taylor",
		Message:    "see you at 6",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(body, "Hi there") {
		t.Errorf("Expected fallback greeting without a recipient name, got: %s", body)
	}
}
