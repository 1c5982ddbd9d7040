package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spsh-store/email-service/internal/domain"
	"github.com/spsh-store/email-service/internal/ratelimit"
	"github.com/spsh-store/email-service/internal/service"
)

// stubProvider counts calls and returns a configurable result.
type stubProvider struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *stubProvider) Send(_ context.Context, _ *domain.SendRequest) (*domain.SendResponse, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.err != nil {
		return nil, p.err
	}
	return &domain.SendResponse{
		MessageID: "msg-test",
		Status:    "accepted",
		Timestamp: time.Now().UTC(),
	}, nil
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

var metricsOnce sync.Once
var sharedMetrics *Metrics

// testMetrics returns a process-wide Metrics; promauto registers into
// the default registry, which panics on duplicate registration.
func testMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = NewMetrics()
	})
	return sharedMetrics
}

func newTestRouter(provider domain.EmailProvider, maxRequests int) http.Handler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	limiter := ratelimit.NewMemoryLimiter(15*time.Minute, maxRequests)
	svc := service.NewDispatchService(limiter, provider, "noreply@spsh-store.test", logger)
	h := NewEmailHandler(svc, testMetrics())

	r := chi.NewRouter()
	r.Route("/api/v1/emails", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	return r
}

func doRequest(t *testing.T, router http.Handler, path, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "10.0.0.1:52134"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestEmailHandler_Registration(t *testing.T) {
	provider := &stubProvider{}
	router := newTestRouter(provider, 100)

	rec, resp := doRequest(t, router, "/api/v1/emails/registration",
		`{"name":"Jane Doe","email":"jane@example.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "Registration Successful", data["subject"])
	assert.Equal(t, "sent", data["status"])
	assert.Equal(t, 1, provider.callCount())
}

func TestEmailHandler_Payment(t *testing.T) {
	provider := &stubProvider{}
	router := newTestRouter(provider, 100)

	rec, resp := doRequest(t, router, "/api/v1/emails/payment",
		`{"name":"Jane Doe","email":"jane@example.com","order_ref":"ORD-42","total_amount":199.5}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "Order Confirmation - ORD-42", data["subject"])
}

func TestEmailHandler_ValidationFailureListsAllErrors(t *testing.T) {
	provider := &stubProvider{}
	router := newTestRouter(provider, 100)

	rec, resp := doRequest(t, router, "/api/v1/emails/payment",
		`{"name":"","email":"nope","order_ref":"","total_amount":0}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	details := resp.Error.Details.([]any)
	assert.Len(t, details, 4)
	assert.Equal(t, 0, provider.callCount(), "no delivery attempt on invalid input")
}

func TestEmailHandler_ZeroAmountRejected(t *testing.T) {
	provider := &stubProvider{}
	router := newTestRouter(provider, 100)

	rec, resp := doRequest(t, router, "/api/v1/emails/payment",
		`{"name":"Jane Doe","email":"jane@example.com","order_ref":"ORD-42","total_amount":0}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, 0, provider.callCount())
}

func TestEmailHandler_RateLimited(t *testing.T) {
	provider := &stubProvider{}
	router := newTestRouter(provider, 2)

	body := `{"name":"Jane Doe","email":"jane@example.com"}`
	for i := 0; i < 2; i++ {
		rec, _ := doRequest(t, router, "/api/v1/emails/registration", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, resp := doRequest(t, router, "/api/v1/emails/registration", body)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", resp.Error.Code)
	assert.Equal(t, 2, provider.callCount())
}

func TestEmailHandler_ProviderFailureHidesDiagnostic(t *testing.T) {
	provider := &stubProvider{
		err: domain.NewProviderError(401, "invalid api key: SG.secret-diagnostic", false),
	}
	router := newTestRouter(provider, 100)

	rec, resp := doRequest(t, router, "/api/v1/emails/registration",
		`{"name":"Jane Doe","email":"jane@example.com"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)
	assert.Equal(t, "Email service is not available", resp.Error.Message)
	assert.NotContains(t, rec.Body.String(), "secret-diagnostic")
	assert.NotContains(t, rec.Body.String(), "401")
}

func TestEmailHandler_RejectsUnknownFields(t *testing.T) {
	provider := &stubProvider{}
	router := newTestRouter(provider, 100)

	rec, resp := doRequest(t, router, "/api/v1/emails/registration",
		`{"name":"Jane Doe","email":"jane@example.com","admin":true}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, 0, provider.callCount())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{name: "remote addr", remoteAddr: "10.0.0.1:52134", want: "10.0.0.1"},
		{name: "forwarded single", remoteAddr: "127.0.0.1:80", forwarded: "203.0.113.9", want: "203.0.113.9"},
		{name: "forwarded chain uses first hop", remoteAddr: "127.0.0.1:80", forwarded: "203.0.113.9, 10.0.0.2", want: "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
