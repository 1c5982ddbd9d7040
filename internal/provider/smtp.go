package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/spsh-store/email-service/internal/config"
	"github.com/spsh-store/email-service/internal/domain"
)

// SMTPProvider implements domain.EmailProvider over a plain SMTP
// server, for deployments without a SendGrid account.
type SMTPProvider struct {
	cfg config.EmailConfig
}

// NewSMTPProvider creates a new SMTPProvider
func NewSMTPProvider(cfg config.EmailConfig) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

// Send delivers the message using the configured SMTP server. Failures
// are normalized into domain.ProviderError like the HTTP provider.
func (p *SMTPProvider) Send(ctx context.Context, req *domain.SendRequest) (*domain.SendResponse, error) {
	m := mail.NewMsg()
	if err := m.From(req.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(req.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}

	m.Subject(req.Subject)
	m.SetBodyString(mail.TypeTextHTML, req.HTMLBody)

	c, err := mail.NewClient(p.cfg.SMTPHost,
		mail.WithPort(p.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(p.cfg.SMTPUsername),
		mail.WithPassword(p.cfg.SMTPPassword),
		mail.WithTimeout(p.cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return nil, domain.NewProviderError(0, fmt.Sprintf("smtp send failed: %v", err), true)
	}

	return &domain.SendResponse{
		MessageID: fmt.Sprintf("msg-%d", time.Now().UnixNano()),
		Status:    "accepted",
		Timestamp: time.Now().UTC(),
	}, nil
}
