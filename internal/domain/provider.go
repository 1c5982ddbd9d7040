package domain

import (
	"context"
	"time"
)

// SendRequest represents a single message handed to the external
// delivery provider.
type SendRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

// SendResponse represents the provider's acceptance acknowledgment.
// Acceptance is not a delivery guarantee; no delivery receipts exist.
type SendResponse struct {
	MessageID string    `json:"messageId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// EmailProvider defines the interface for sending email through an
// external delivery service.
type EmailProvider interface {
	Send(ctx context.Context, req *SendRequest) (*SendResponse, error)
}

// RateLimiter gates admission per client before any validation or
// provider call happens.
type RateLimiter interface {
	Allow(ctx context.Context, clientID string) (bool, error)
}
