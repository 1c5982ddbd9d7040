// Package template maps a validated dispatch request to a fixed subject
// and HTML body. Rendering is pure and deterministic: the same request
// always produces byte-identical output. Recipient fields arrive
// already escaped, so templates interpolate them directly.
package template

import (
	"strconv"
	"strings"

	"github.com/spsh-store/email-service/internal/domain"
)

// Email is a rendered message ready for the delivery provider.
type Email struct {
	Subject  string
	HTMLBody string
}

const (
	subjectRegistration   = "Registration Successful"
	subjectAccountUpdate  = "Your Account Details Have Been Updated"
	subjectAccountRemoval = "Your Account Has Been Removed"
	subjectPayment        = "Order Confirmation - {{order_ref}}"
)

const bodyRegistration = `<p>
    Dear {{name}},<br/><br/>
    Thank you for registering with us. Your account has been created successfully.<br/><br/>
    If you have any questions or concerns, please don't hesitate to contact us. Our team is always here to help.<br/>
    Thank you for choosing our service, and we look forward to continuing to serve you.<br/><br/>
    Regards, <br/>
    Administrator, <br/>
    SPSH Ayurvedic Center, Sri Lanka
</p>`

const bodyAccountUpdate = `<p>
    Dear {{name}},<br/><br/>
    We wanted to let you know that we have recently updated your account details.
    Please review the changes we made to ensure that your information is accurate and up-to-date.<br/><br/>
    If you have any questions or concerns about these changes, please don't hesitate to contact us. Our team is always here to help.<br/>
    Thank you for choosing our service, and we look forward to continuing to serve you.<br/><br/>
    Best Regards, <br/>
    Administrator, <br/>
    SPSH Ayurvedic Center, Sri Lanka
</p>`

const bodyAccountRemoval = `<p>
    Dear {{name}},<br/><br/>
    We're sorry to see you go, but we wanted to confirm that your account has been successfully removed from our system.<br/><br/>
    If you have any questions or concerns, please don't hesitate to contact us. Our team is always here to help.<br/>
    Thank you for the time you spent with us and we wish you all the best.<br/><br/>
    Regards, <br/>
    Administrator, <br/>
    SPSH Ayurvedic Center, Sri Lanka
</p>`

const bodyPayment = `<p>
    Dear {{name}},<br/><br/>
    Thank you for your recent purchase on SPSH Ayurvedic Center. We are pleased to confirm that your order has been successfully processed and is now being prepared for shipping.<br/><br/>
    <u>Order Details:</u><br/><br/>
    <b>Order Number:</b> {{order_ref}}<br/>
    <b>Total Amount:</b> Rs.{{total_amount}}<br/><br/>
    If you have any questions or concerns, please don't hesitate to contact us. Our team is always here to help.<br/>
    Thank you for choosing our service, and we look forward to continuing to serve you.<br/><br/>
    Regards, <br/>
    Administrator, <br/>
    SPSH Ayurvedic Center, Sri Lanka
</p>`

// Render produces the subject and HTML body for a validated request.
func Render(req *domain.DispatchRequest) (*Email, error) {
	var subject, body string

	switch req.EventKind {
	case domain.EventRegistration:
		subject, body = subjectRegistration, bodyRegistration
	case domain.EventAccountUpdate:
		subject, body = subjectAccountUpdate, bodyAccountUpdate
	case domain.EventAccountRemoval:
		subject, body = subjectAccountRemoval, bodyAccountRemoval
	case domain.EventPayment:
		subject, body = subjectPayment, bodyPayment
	default:
		return nil, domain.ErrUnknownEventKind
	}

	vars := map[string]string{
		"name": req.RecipientName,
	}
	if req.EventKind.RequiresOrderDetails() {
		vars["order_ref"] = req.OrderRef
		vars["total_amount"] = formatAmount(req.TotalAmount)
	}

	return &Email{
		Subject:  interpolate(subject, vars),
		HTMLBody: interpolate(body, vars),
	}, nil
}

// interpolate replaces {{key}} placeholders with their values.
func interpolate(content string, vars map[string]string) string {
	result := content
	for key, value := range vars {
		placeholder := "{{" + key + "}}"
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// formatAmount renders a total to exactly two decimal places.
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
