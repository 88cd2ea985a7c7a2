package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
)

// Service sends transactional notification emails through Resend.
type Service struct {
	client *resend.Client
	from   string
}

func NewService(apiKey, from string) *Service {
	return &Service{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

const newMessageTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>New Message from {{.SenderName}}</h2>
  <p>Hi {{if .RecipientName}}{{.RecipientName}}{{else}}there{{end}},</p>
  <p>You have received a new message:</p>
  <div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 15px 0;">
    <p style="margin: 0; font-style: italic;">&quot;{{.Message}}&quot;</p>
  </div>
  <p><a href="/" style="background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View Message</a></p>
  <p>Best regards,<br>Your Coach App Team</p>
</div>
`

var newMessageTmpl = template.Must(template.New("new_message").Parse(newMessageTemplate))

// NewMessageEmail holds the fields interpolated into the notification body.
// Rendering goes through html/template, so user-supplied content is escaped.
type NewMessageEmail struct {
	To            string
	RecipientName string
	SenderName    string
	Message       string
}

// RenderNewMessageBody produces the HTML body for a new-message notification.
func RenderNewMessageBody(email NewMessageEmail) (string, error) {
	var body bytes.Buffer
	if err := newMessageTmpl.Execute(&body, email); err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}
	return body.String(), nil
}

// SendNewMessage sends the fallback email for a chat message and returns the
// provider-assigned email id.
func (s *Service) SendNewMessage(ctx context.Context, email NewMessageEmail) (string, error) {
	body, err := RenderNewMessageBody(email)
	if err != nil {
		return "", err
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email.To},
		Subject: fmt.Sprintf("New message from %s", email.SenderName),
		Html:    body,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	return sent.Id, nil
}
