// Package pipeline orchestrates one batch run: PDFs from the inbox through
// extraction, weighing, reallocation and tariff assignment into detail CSVs.
package pipeline

import (
	"context"
	"strings"

	"intrastat-assistant/internal/entity"
	"intrastat-assistant/internal/llm"
)

// TargetWeightSource supplies the measured shipment totals for an invoice.
// The provisional sum is passed along so an interactive source can show the
// operator what the catalog expects. ok=false means the operator skipped the
// reallocation for this invoice; items then keep their provisional weights.
type TargetWeightSource interface {
	Targets(ctx context.Context, invoiceNumber string, provisionalNetKg float64) (target entity.ReallocationTarget, ok bool, err error)
}

// CountryResolver decides the country of origin for an item.
type CountryResolver interface {
	Resolve(itemCode, extracted string) string
}

// OverrideCountryResolver applies the manual per-product overrides and falls
// back to whatever the extraction read off the page, as long as it is a
// plausible two-letter code.
type OverrideCountryResolver struct{}

func (OverrideCountryResolver) Resolve(itemCode, extracted string) string {
	if c, ok := llm.CountryOverride(itemCode); ok {
		return c
	}
	if c, ok := normalizeCountry(extracted); ok {
		return c
	}
	return ""
}

// normalizeCountry reduces free-text country input to an upper-case
// two-letter code, rejecting anything else.
func normalizeCountry(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return "", false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return s, true
}
