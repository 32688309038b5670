// Package classify decides whether an extracted invoice line is a physical
// product or a service line such as a discount, shipping or handling fee.
// Products get weights and tariff codes; service lines pass through to the
// summary with special handling.
package classify

import (
	"regexp"
	"strings"
)

// Keywords that mark non-product lines, in Czech, Slovak and English as they
// appear on the supported invoices.
var serviceKeywords = []string{
	"sleva",
	"zľava",
	"doprava",
	"preprava",
	"poplatek",
	"manipulační",
	"discount",
	"shipping",
	"fee",
	"handling",
}

// productCodePattern matches the supplier registration code format, e.g.
// "CZ-1263.1" or "JA-196J". A line carrying such a code is a product even
// when its description contains a service keyword.
var productCodePattern = regexp.MustCompile(`^[A-Z]{2}-\d+`)

// IsProduct reports whether a line with the given item code and description
// represents a physical product.
func IsProduct(code, description string) bool {
	code = strings.TrimSpace(code)
	if productCodePattern.MatchString(code) {
		return true
	}
	text := strings.ToLower(code + " " + description)
	for _, kw := range serviceKeywords {
		if strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

// IsCustomerDiscount reports whether the line is a customer discount row.
// Discounts keep their negative price in the summary under a dedicated key.
func IsCustomerDiscount(description string) bool {
	return strings.Contains(strings.ToLower(description), "sleva zákazníkovi")
}

// IsHandlingFee reports whether the line is a handling fee row. Handling fees
// are zeroed out in the summary.
func IsHandlingFee(description string) bool {
	return strings.Contains(strings.ToLower(description), "manipulační poplatek")
}
