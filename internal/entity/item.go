package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"intrastat-assistant/constants"
)

// LineItem is one extracted invoice row, enriched step by step as it moves
// through the pipeline. Provisional is computed once and never rewritten;
// FinalNet/FinalGross are assigned exactly once by the reallocation engine.
type LineItem struct {
	PageNumber    int
	InvoiceNumber string

	// ItemCode is the row identifier used in the output: the extracted
	// product code when present, the item name otherwise.
	ItemCode string
	// RawCode is the product code exactly as extracted; empty for rows
	// without one. Only RawCode is used for weight-table lookups.
	RawCode     string
	Description string
	Country     string
	Currency    string

	Quantity    decimal.Decimal
	QuantityOK  bool
	RawQuantity string

	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal

	IsProduct bool

	Provisional Weight
	FinalNet    Weight
	FinalGross  Weight

	TariffCode        string
	TariffDescription string

	// PageFailed marks the sentinel row substituted for a page whose
	// extraction call failed; ItemCode carries the failure message.
	PageFailed bool
}

// FailedPageItem builds the sentinel row for a page that could not be
// analyzed. It participates in no lookup, reallocation or prompt.
func FailedPageItem(page int, invoiceNumber, errMsg string) LineItem {
	return LineItem{
		PageNumber:    page,
		InvoiceNumber: invoiceNumber,
		ItemCode:      fmt.Sprintf("%s: %s", constants.PageFailedPrefix, errMsg),
		PageFailed:    true,
	}
}

// ParseQuantity parses a quantity accepting both comma and dot decimal
// separators. Negative quantities are rejected.
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty quantity")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative quantity %s", d)
	}
	return d, nil
}

// ReallocationTarget is the operator-supplied pair of invoice totals.
// Immutable once captured.
type ReallocationTarget struct {
	NetKg   float64
	GrossKg float64
}

// Validate enforces gross >= net >= 0.
func (t ReallocationTarget) Validate() error {
	if t.NetKg < 0 {
		return fmt.Errorf("target net weight %.3f kg is negative", t.NetKg)
	}
	if t.GrossKg < t.NetKg {
		return fmt.Errorf("target gross weight %.3f kg is below target net weight %.3f kg", t.GrossKg, t.NetKg)
	}
	return nil
}
