package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spsh-store/email-service/internal/config"
	"github.com/spsh-store/email-service/internal/domain"
)

// SendGridProvider implements domain.EmailProvider using the SendGrid
// v3 mail send API.
type SendGridProvider struct {
	client *http.Client
	apiKey string
	apiURL string
}

// NewSendGridProvider creates a new SendGridProvider
func NewSendGridProvider(cfg config.EmailConfig) *SendGridProvider {
	return &SendGridProvider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.SendGridAPIKey,
		apiURL: cfg.SendGridURL,
	}
}

type sendGridAddress struct {
	Email string `json:"email"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridMail struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
}

// Send hands a single message to SendGrid. Transport, authentication
// and provider-side failures are all normalized into a
// domain.ProviderError whose message is kept for logging only.
func (p *SendGridProvider) Send(ctx context.Context, req *domain.SendRequest) (*domain.SendResponse, error) {
	payload := sendGridMail{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridAddress{{Email: req.To}}},
		},
		From:    sendGridAddress{Email: req.From},
		Subject: req.Subject,
		Content: []sendGridContent{
			{Type: "text/html", Value: req.HTMLBody},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, domain.NewProviderError(0, fmt.Sprintf("request failed: %v", err), true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return nil, domain.NewProviderError(resp.StatusCode, string(respBody), retryable)
	}

	messageID := resp.Header.Get("X-Message-Id")
	if messageID == "" {
		messageID = fmt.Sprintf("msg-%d", time.Now().UnixNano())
	}

	return &domain.SendResponse{
		MessageID: messageID,
		Status:    "accepted",
		Timestamp: time.Now().UTC(),
	}, nil
}
