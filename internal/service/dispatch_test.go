package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spsh-store/email-service/internal/domain"
)

// MockRateLimiter is a mock implementation of domain.RateLimiter
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

// MockEmailProvider is a mock implementation of domain.EmailProvider
type MockEmailProvider struct {
	mock.Mock
}

func (m *MockEmailProvider) Send(ctx context.Context, req *domain.SendRequest) (*domain.SendResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SendResponse), args.Error(1)
}

func newTestService(limiter domain.RateLimiter, provider domain.EmailProvider) *DispatchService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewDispatchService(limiter, provider, "noreply@spsh-store.test", logger)
}

func TestDispatchService_Registration(t *testing.T) {
	ctx := context.Background()

	mockLimiter := new(MockRateLimiter)
	mockProvider := new(MockEmailProvider)
	svc := newTestService(mockLimiter, mockProvider)

	mockLimiter.On("Allow", ctx, "10.0.0.1").Return(true, nil).Once()
	mockProvider.On("Send", ctx, mock.AnythingOfType("*domain.SendRequest")).
		Return(&domain.SendResponse{
			MessageID: "msg-1",
			Status:    "accepted",
			Timestamp: time.Now().UTC(),
		}, nil).Once()

	result, err := svc.Dispatch(ctx, "10.0.0.1", domain.EventRegistration, domain.RawRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, result.Status)
	assert.Equal(t, "Registration Successful", result.Subject)
	assert.Equal(t, "jane@example.com", result.Recipient)

	sendReq := mockProvider.Calls[0].Arguments.Get(1).(*domain.SendRequest)
	assert.Equal(t, "noreply@spsh-store.test", sendReq.From)
	assert.Contains(t, sendReq.HTMLBody, "Dear Jane Doe,")

	mockLimiter.AssertExpectations(t)
	mockProvider.AssertExpectations(t)
}

func TestDispatchService_PaymentConfirmation(t *testing.T) {
	ctx := context.Background()

	mockLimiter := new(MockRateLimiter)
	mockProvider := new(MockEmailProvider)
	svc := newTestService(mockLimiter, mockProvider)

	mockLimiter.On("Allow", ctx, "10.0.0.1").Return(true, nil).Once()
	mockProvider.On("Send", ctx, mock.AnythingOfType("*domain.SendRequest")).
		Return(&domain.SendResponse{MessageID: "msg-2", Status: "accepted", Timestamp: time.Now().UTC()}, nil).Once()

	result, err := svc.Dispatch(ctx, "10.0.0.1", domain.EventPayment, domain.RawRequest{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		OrderRef:    "ORD-42",
		TotalAmount: "199.5",
	})

	require.NoError(t, err)
	assert.Equal(t, "Order Confirmation - ORD-42", result.Subject)

	sendReq := mockProvider.Calls[0].Arguments.Get(1).(*domain.SendRequest)
	assert.Contains(t, sendReq.HTMLBody, "ORD-42")
	assert.Contains(t, sendReq.HTMLBody, "199.50")
}

func TestDispatchService_RateLimited(t *testing.T) {
	ctx := context.Background()

	mockLimiter := new(MockRateLimiter)
	mockProvider := new(MockEmailProvider)
	svc := newTestService(mockLimiter, mockProvider)

	mockLimiter.On("Allow", ctx, "10.0.0.1").Return(false, nil).Once()

	// An invalid payload still hits the admission gate first and never
	// reaches validation or the provider.
	result, err := svc.Dispatch(ctx, "10.0.0.1", domain.EventRegistration, domain.RawRequest{
		Name:  "",
		Email: "not-an-email",
	})

	assert.ErrorIs(t, err, domain.ErrRateLimitExceeded)
	assert.Nil(t, result)
	mockProvider.AssertNumberOfCalls(t, "Send", 0)
	mockLimiter.AssertExpectations(t)
}

func TestDispatchService_InvalidAmountSkipsProvider(t *testing.T) {
	ctx := context.Background()

	mockLimiter := new(MockRateLimiter)
	mockProvider := new(MockEmailProvider)
	svc := newTestService(mockLimiter, mockProvider)

	mockLimiter.On("Allow", ctx, "10.0.0.1").Return(true, nil).Once()

	result, err := svc.Dispatch(ctx, "10.0.0.1", domain.EventPayment, domain.RawRequest{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		OrderRef:    "ORD-42",
		TotalAmount: "0",
	})

	require.Error(t, err)
	assert.Nil(t, result)

	var validationErrs domain.ValidationErrors
	assert.True(t, errors.As(err, &validationErrs))
	mockProvider.AssertNumberOfCalls(t, "Send", 0)
}

func TestDispatchService_MalformedEmailSkipsProvider(t *testing.T) {
	ctx := context.Background()

	mockLimiter := new(MockRateLimiter)
	mockProvider := new(MockEmailProvider)
	svc := newTestService(mockLimiter, mockProvider)

	mockLimiter.On("Allow", ctx, "10.0.0.1").Return(true, nil).Once()

	_, err := svc.Dispatch(ctx, "10.0.0.1", domain.EventAccountUpdate, domain.RawRequest{
		Name:  "Jane Doe",
		Email: "jane@@example",
	})

	require.Error(t, err)
	mockProvider.AssertNumberOfCalls(t, "Send", 0)
	// Admission was consumed before validation ran.
	mockLimiter.AssertNumberOfCalls(t, "Allow", 1)
}

func TestDispatchService_ProviderFailure(t *testing.T) {
	ctx := context.Background()

	mockLimiter := new(MockRateLimiter)
	mockProvider := new(MockEmailProvider)
	svc := newTestService(mockLimiter, mockProvider)

	mockLimiter.On("Allow", ctx, "10.0.0.1").Return(true, nil).Once()
	mockProvider.On("Send", ctx, mock.AnythingOfType("*domain.SendRequest")).
		Return(nil, domain.NewProviderError(401, "invalid api key: SG.secret-diagnostic", false)).Once()

	result, err := svc.Dispatch(ctx, "10.0.0.1", domain.EventRegistration, domain.RawRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	// The caller-visible error carries none of the provider diagnostic.
	assert.NotContains(t, err.Error(), "secret-diagnostic")
	assert.NotContains(t, err.Error(), "401")
}

func TestDispatchService_LimiterError(t *testing.T) {
	ctx := context.Background()

	mockLimiter := new(MockRateLimiter)
	mockProvider := new(MockEmailProvider)
	svc := newTestService(mockLimiter, mockProvider)

	mockLimiter.On("Allow", ctx, "10.0.0.1").Return(false, errors.New("redis: connection refused")).Once()

	result, err := svc.Dispatch(ctx, "10.0.0.1", domain.EventRegistration, domain.RawRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	mockProvider.AssertNumberOfCalls(t, "Send", 0)
}
