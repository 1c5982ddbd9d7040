package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/spsh-store/email-service/internal/domain"
	"github.com/spsh-store/email-service/internal/service"
)

// EmailHandler handles transactional email HTTP requests
type EmailHandler struct {
	service *service.DispatchService
	metrics *Metrics
}

// NewEmailHandler creates a new EmailHandler
func NewEmailHandler(service *service.DispatchService, metrics *Metrics) *EmailHandler {
	return &EmailHandler{
		service: service,
		metrics: metrics,
	}
}

// RegisterRoutes registers email routes
func (h *EmailHandler) RegisterRoutes(r chi.Router) {
	r.Post("/registration", h.Registration)
	r.Post("/account-update", h.AccountUpdate)
	r.Post("/account-removal", h.AccountRemoval)
	r.Post("/payment", h.Payment)
}

// SendEmailRequest represents a request to send an account email
type SendEmailRequest struct {
	Name  string `json:"name" example:"Jane Doe"`
	Email string `json:"email" example:"jane@example.com"`
}

// PaymentEmailRequest represents a request to send an order confirmation
type PaymentEmailRequest struct {
	Name        string      `json:"name" example:"Jane Doe"`
	Email       string      `json:"email" example:"jane@example.com"`
	OrderRef    string      `json:"order_ref" example:"ORD-42"`
	TotalAmount json.Number `json:"total_amount" example:"199.50"`
}

// Registration sends a registration confirmation email
// @Summary Send registration email
// @Description Send an account creation confirmation to the recipient
// @Tags emails
// @Accept json
// @Produce json
// @Param request body SendEmailRequest true "Recipient details"
// @Success 200 {object} Response{data=domain.DispatchResult}
// @Failure 400 {object} Response
// @Failure 429 {object} Response
// @Failure 500 {object} Response
// @Router /api/v1/emails/registration [post]
func (h *EmailHandler) Registration(w http.ResponseWriter, r *http.Request) {
	h.handleAccountEmail(w, r, domain.EventRegistration)
}

// AccountUpdate sends an account details updated email
// @Summary Send account update email
// @Tags emails
// @Accept json
// @Produce json
// @Param request body SendEmailRequest true "Recipient details"
// @Success 200 {object} Response{data=domain.DispatchResult}
// @Failure 400 {object} Response
// @Failure 429 {object} Response
// @Failure 500 {object} Response
// @Router /api/v1/emails/account-update [post]
func (h *EmailHandler) AccountUpdate(w http.ResponseWriter, r *http.Request) {
	h.handleAccountEmail(w, r, domain.EventAccountUpdate)
}

// AccountRemoval sends an account removal confirmation email
// @Summary Send account removal email
// @Tags emails
// @Accept json
// @Produce json
// @Param request body SendEmailRequest true "Recipient details"
// @Success 200 {object} Response{data=domain.DispatchResult}
// @Failure 400 {object} Response
// @Failure 429 {object} Response
// @Failure 500 {object} Response
// @Router /api/v1/emails/account-removal [post]
func (h *EmailHandler) AccountRemoval(w http.ResponseWriter, r *http.Request) {
	h.handleAccountEmail(w, r, domain.EventAccountRemoval)
}

// Payment sends an order confirmation email
// @Summary Send order confirmation email
// @Tags emails
// @Accept json
// @Produce json
// @Param request body PaymentEmailRequest true "Recipient and order details"
// @Success 200 {object} Response{data=domain.DispatchResult}
// @Failure 400 {object} Response
// @Failure 429 {object} Response
// @Failure 500 {object} Response
// @Router /api/v1/emails/payment [post]
func (h *EmailHandler) Payment(w http.ResponseWriter, r *http.Request) {
	var req PaymentEmailRequest
	if err := DecodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	h.dispatch(w, r, domain.EventPayment, domain.RawRequest{
		Name:        req.Name,
		Email:       req.Email,
		OrderRef:    req.OrderRef,
		TotalAmount: req.TotalAmount.String(),
	})
}

func (h *EmailHandler) handleAccountEmail(w http.ResponseWriter, r *http.Request, kind domain.EventKind) {
	var req SendEmailRequest
	if err := DecodeJSON(r, &req); err != nil {
		HandleError(w, err)
		return
	}

	h.dispatch(w, r, kind, domain.RawRequest{
		Name:  req.Name,
		Email: req.Email,
	})
}

func (h *EmailHandler) dispatch(w http.ResponseWriter, r *http.Request, kind domain.EventKind, raw domain.RawRequest) {
	result, err := h.service.Dispatch(r.Context(), clientIP(r), kind, raw)
	if err != nil {
		h.metrics.RecordEmailFailed(string(kind), failureReason(err))
		if errors.Is(err, domain.ErrRateLimitExceeded) {
			h.metrics.RecordRateLimitDenial()
		}
		HandleError(w, err)
		return
	}

	h.metrics.RecordEmailSent(string(kind))
	JSON(w, http.StatusOK, result)
}

// failureReason buckets an error for the failure counter.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, domain.ErrProviderUnavailable):
		return "provider_unavailable"
	case errors.Is(err, domain.ErrUnknownEventKind):
		return "unknown_event_kind"
	default:
		var validationErrs domain.ValidationErrors
		var validationErr domain.ValidationError
		if errors.As(err, &validationErrs) || errors.As(err, &validationErr) {
			return "invalid_input"
		}
		return "internal"
	}
}

// clientIP extracts the client identifier used for rate limiting. The
// first X-Forwarded-For hop wins when the service runs behind a proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
