package domain

import (
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RawRequest carries the untrusted inbound fields for an event.
// TotalAmount stays a string until validation so non-numeric values are
// rejected rather than silently coerced.
type RawRequest struct {
	Name        string
	Email       string
	OrderRef    string
	TotalAmount string
}

// BuildDispatchRequest validates the raw fields for the given event kind
// and returns either an immutable DispatchRequest or the complete list
// of field failures. Validation is exhaustive: every applicable field is
// checked and all failures are reported together. No side effects.
func BuildDispatchRequest(kind EventKind, raw RawRequest) (*DispatchRequest, error) {
	if !kind.IsValid() {
		return nil, ErrUnknownEventKind
	}

	var errs []ValidationError

	email := strings.TrimSpace(raw.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		errs = append(errs, NewValidationError("email", "invalid email format"))
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		errs = append(errs, NewValidationError("name", "name is required"))
	}

	req := &DispatchRequest{
		EventKind:      kind,
		RecipientEmail: email,
		RecipientName:  html.EscapeString(name),
	}

	if kind.RequiresOrderDetails() {
		orderRef := strings.TrimSpace(raw.OrderRef)
		if orderRef == "" {
			errs = append(errs, NewValidationError("order_ref", "order reference is required"))
		}
		req.OrderRef = html.EscapeString(orderRef)

		amount, err := strconv.ParseFloat(strings.TrimSpace(raw.TotalAmount), 64)
		if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
			errs = append(errs, NewValidationError("total_amount", "total amount must be a number greater than zero"))
		} else {
			req.TotalAmount = amount
		}
	}

	if len(errs) > 0 {
		return nil, ValidationErrors{Errors: errs}
	}

	return req, nil
}
