package services

import "strings"

// Substrings the cake order form embeds in its generated message body.
// Presence of both marks a submission as an order inquiry even when the
// explicit flag is missing (older form versions did not send it).
const (
	orderMarkerProduct = "Cake:"
	orderMarkerDesign  = "Design Type:"
)

// IsOrderInquiry decides whether a submission is an intent-to-purchase.
// The explicit form flag wins; the substring heuristic is a legacy
// fallback and can misfire on contact messages that quote an order.
func IsOrderInquiry(isOrderForm bool, message string) bool {
	if isOrderForm {
		return true
	}
	return strings.Contains(message, orderMarkerProduct) &&
		strings.Contains(message, orderMarkerDesign)
}
