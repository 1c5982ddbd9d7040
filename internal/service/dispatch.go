package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spsh-store/email-service/internal/domain"
	"github.com/spsh-store/email-service/internal/template"
)

// DispatchService sequences a single notification request through
// admission, validation, rendering and delivery. The rate-limit store
// is the only state shared across requests; each dispatch is otherwise
// independent.
type DispatchService struct {
	limiter  domain.RateLimiter
	provider domain.EmailProvider
	sender   string
	logger   *slog.Logger
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	limiter domain.RateLimiter,
	provider domain.EmailProvider,
	sender string,
	logger *slog.Logger,
) *DispatchService {
	return &DispatchService{
		limiter:  limiter,
		provider: provider,
		sender:   sender,
		logger:   logger,
	}
}

// Dispatch runs the request to one of four terminal outcomes: rate
// limited, invalid input (with the full failure list), sent, or
// provider unavailable. Admission is checked before validation so
// abusive volume never reaches the provider regardless of payload
// validity. A provider failure is logged with its diagnostic but only
// the generic sentinel is returned to the caller.
func (s *DispatchService) Dispatch(ctx context.Context, clientID string, kind domain.EventKind, raw domain.RawRequest) (*domain.DispatchResult, error) {
	allowed, err := s.limiter.Allow(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		s.logger.Warn("rate limit exceeded",
			"client_id", clientID,
			"event_kind", kind,
		)
		return nil, domain.ErrRateLimitExceeded
	}

	req, err := domain.BuildDispatchRequest(kind, raw)
	if err != nil {
		return nil, err
	}

	email, err := template.Render(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.provider.Send(ctx, &domain.SendRequest{
		From:     s.sender,
		To:       req.RecipientEmail,
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
	})
	if err != nil {
		var provErr domain.ProviderError
		if errors.As(err, &provErr) {
			s.logger.Error("provider send failed",
				"event_kind", kind,
				"status_code", provErr.StatusCode,
				"retryable", provErr.Retryable,
				"error", provErr.Message,
			)
		} else {
			s.logger.Error("provider send failed",
				"event_kind", kind,
				"error", err,
			)
		}
		return nil, domain.ErrProviderUnavailable
	}

	s.logger.Info("email dispatched",
		"event_kind", kind,
		"recipient", req.RecipientEmail,
		"message_id", resp.MessageID,
	)

	return &domain.DispatchResult{
		EventKind: kind,
		Recipient: req.RecipientEmail,
		Subject:   email.Subject,
		Status:    domain.StatusSent,
		MessageID: resp.MessageID,
		SentAt:    resp.Timestamp,
	}, nil
}
