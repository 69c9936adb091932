// This file contains the admin notification and customer acknowledgement
// render methods. The admin notification carries both HTML and plain-text
// bodies so it stays readable in minimal mail clients.
package templates

import (
	"fmt"
	"strings"
)

// RenderContactNotification renders the inquiry notification sent to the
// business. Returns subject, HTML body, plain-text body, and error.
func (r *Renderer) RenderContactNotification(data *EmailData) (string, string, string, error) {
	if r == nil {
		return "", "", "", ErrNilRenderer
	}
	if data == nil {
		return "", "", "", fmt.Errorf("email data is nil")
	}

	kind := "Contact Message"
	if data.InquiryType == "order" {
		kind = "Order Inquiry"
	}
	data.Subject = fmt.Sprintf("New %s from %s", kind, data.CustomerName)
	data.Preheader = fmt.Sprintf("%s - %s", data.CustomerEmail, data.CustomerPhone)

	htmlBody, err := r.Render("contact_notification", data)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to render contact_notification: %w", err)
	}

	return data.Subject, htmlBody, contactNotificationText(data), nil
}

// RenderCustomerAck renders the simple acknowledgement sent directly to
// the customer when order persistence fails (fallback path).
// Returns subject, HTML body, and error.
func (r *Renderer) RenderCustomerAck(data *EmailData) (string, string, error) {
	if r == nil {
		return "", "", ErrNilRenderer
	}
	if data == nil {
		return "", "", fmt.Errorf("email data is nil")
	}

	data.Subject = fmt.Sprintf("We received your inquiry - %s", data.BusinessName)
	data.Preheader = "Thanks for getting in touch. We will reply as soon as we can."

	body, err := r.Render("customer_ack", data)
	if err != nil {
		return "", "", fmt.Errorf("failed to render customer_ack: %w", err)
	}

	return data.Subject, body, nil
}

func contactNotificationText(data *EmailData) string {
	var b strings.Builder
	b.WriteString("New inquiry received\n\n")
	writeField(&b, "Name", data.CustomerName)
	writeField(&b, "Email", data.CustomerEmail)
	writeField(&b, "Phone", data.CustomerPhone)
	writeField(&b, "Address", data.AddressLine)
	writeField(&b, "City", data.City)
	writeField(&b, "Postcode", data.Postcode)
	writeField(&b, "Date needed", data.DateNeeded)
	if data.HasImage {
		writeField(&b, "Design image", "attached")
	}
	if data.Message != "" {
		b.WriteString("\nMessage:\n")
		b.WriteString(data.Message)
		b.WriteString("\n")
	}
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}
