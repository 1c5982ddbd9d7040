package domain

import "time"

// EventKind represents the category of domain occurrence that triggers
// an outbound email.
type EventKind string

const (
	EventRegistration   EventKind = "registration"
	EventAccountUpdate  EventKind = "account_update"
	EventAccountRemoval EventKind = "account_removal"
	EventPayment        EventKind = "payment_confirmation"
)

func (k EventKind) IsValid() bool {
	switch k {
	case EventRegistration, EventAccountUpdate, EventAccountRemoval, EventPayment:
		return true
	}
	return false
}

// RequiresOrderDetails reports whether the event kind needs an order
// reference and total amount in addition to the recipient fields.
func (k EventKind) RequiresOrderDetails() bool {
	return k == EventPayment
}

// DispatchRequest is a validated, immutable notification request.
// RecipientName and OrderRef are already trimmed and HTML-escaped, so
// templates may interpolate them without further treatment.
type DispatchRequest struct {
	EventKind      EventKind `json:"event_kind"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	OrderRef       string    `json:"order_ref,omitempty"`
	TotalAmount    float64   `json:"total_amount,omitempty"`
}

// DeliveryStatus is the outcome of a single provider attempt.
type DeliveryStatus string

const (
	StatusSent                DeliveryStatus = "sent"
	StatusRejected            DeliveryStatus = "rejected"
	StatusProviderUnavailable DeliveryStatus = "provider_unavailable"
)

// DispatchResult is returned synchronously to the caller on a
// successful dispatch. It is never persisted.
type DispatchResult struct {
	EventKind EventKind      `json:"event_kind"`
	Recipient string         `json:"recipient"`
	Subject   string         `json:"subject"`
	Status    DeliveryStatus `json:"status"`
	MessageID string         `json:"message_id,omitempty"`
	SentAt    time.Time      `json:"sent_at"`
}
