// This file contains the customer-facing order confirmation render method.
package templates

import (
	"errors"
	"fmt"
)

// ErrMissingOrderNumber is returned when the order number is unset.
var ErrMissingOrderNumber = errors.New("order number is required")

func validateOrderData(data *EmailData) error {
	if data == nil {
		return errors.New("email data is nil")
	}
	if data.OrderNumber == 0 {
		return ErrMissingOrderNumber
	}
	return nil
}

// RenderOrderConfirmation renders the order confirmation sent to the
// customer after their order record is created.
// Returns subject, HTML body, and error.
func (r *Renderer) RenderOrderConfirmation(data *EmailData) (string, string, error) {
	if r == nil {
		return "", "", ErrNilRenderer
	}
	if err := validateOrderData(data); err != nil {
		return "", "", fmt.Errorf("validation failed: %w", err)
	}

	data.Subject = fmt.Sprintf("Order Received - #%d", data.OrderNumber)
	data.Preheader = "Thank you! We have your order request and will be in touch shortly."

	body, err := r.Render("order_confirmation", data)
	if err != nil {
		return "", "", fmt.Errorf("failed to render order_confirmation: %w", err)
	}

	return data.Subject, body, nil
}
