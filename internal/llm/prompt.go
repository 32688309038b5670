package llm

import (
	"fmt"
	"strings"
)

// BuildExtractionPrompt composes the instruction for reading a single
// rendered invoice page. The model answers with JSON only; all values are
// strings so that ambiguous cells survive to the parsing stage.
func BuildExtractionPrompt(pageNumber int) string {
	parts := []string{
		"You are an invoice parser. The attached image is one page of a scanned commercial invoice.",
		"Return ONLY a JSON object, no prose, matching this shape:",
		`{"invoice_number": "...", "country": "...", "currency": "...", "items": [{"code": "...", "description": "...", "quantity": "...", "unit_price": "...", "total_price": "..."}]}`,
		"Rules:",
		"Read every line item on the page, including discounts, shipping and fees.",
		"'code' is the item/registration code in the leftmost column; leave it empty if the line has none.",
		"'country' is the country of origin if stated anywhere on the page, else empty.",
		"Copy numbers exactly as printed, keeping the original decimal separator.",
		"If the invoice number is only on an earlier page, leave 'invoice_number' empty.",
		"Never output null. If a field is not visible, use an empty string.",
	}
	return fmt.Sprintf("Page %d.\n%s", pageNumber, strings.Join(parts, "\n"))
}

// BuildWeightProposalPrompt asks the model to split a shipment's measured
// net and gross weight across its product lines. The required answer is a
// JSON list, one element per item code.
func BuildWeightProposalPrompt(items []WeightItem, targetNet, targetGross float64) string {
	var b strings.Builder
	b.WriteString("You are a logistics assistant. A shipment has a measured total net weight of ")
	fmt.Fprintf(&b, "%.3f kg and a total gross weight of %.3f kg.\n", targetNet, targetGross)
	b.WriteString("Distribute both totals across the items below. Heavier products take a larger share; packaging weight (gross minus net) scales with item bulk, not linearly with weight.\n")
	b.WriteString("Items (code, description, quantity, provisional net kg from the catalog):\n")
	for _, it := range items {
		fmt.Fprintf(&b, "- %s | %s | qty %.1f | provisional %.3f kg\n", it.Code, it.Description, it.Quantity, it.ProvisionalNet)
	}
	b.WriteString("\nReturn ONLY a JSON list, one object per item, no prose:\n")
	b.WriteString(`[{"code": "...", "net_kg": 0.0, "gross_kg": 0.0}]` + "\n")
	b.WriteString("Every item code above must appear exactly once. gross_kg must be >= net_kg >= 0 for every item.\n")
	return b.String()
}

// BuildTariffPrompt asks for a single tariff code from the allowed set. The
// model must answer on one line using the RESULT_CODE protocol so the reply
// can be parsed without JSON handling.
func BuildTariffPrompt(code, description string, allowedCodes []string) string {
	var b strings.Builder
	b.WriteString("You classify products for an EU Intrastat declaration.\n")
	fmt.Fprintf(&b, "Product code: %s\nProduct description: %s\n", code, description)
	b.WriteString("Choose the single best matching tariff code from this list:\n")
	b.WriteString(strings.Join(allowedCodes, ", "))
	b.WriteString("\n\nAnswer with exactly one line in one of these forms and nothing else:\n")
	b.WriteString("RESULT_CODE: <code from the list>\n")
	b.WriteString("RESULT_CODE: UNDETERMINED\n")
	b.WriteString("Use UNDETERMINED only when no listed code plausibly fits.\n")
	return b.String()
}

// ParseTariffReply extracts the code from a RESULT_CODE reply. It tolerates
// surrounding whitespace and extra lines but not a missing marker.
func ParseTariffReply(reply string) (string, error) {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		rest, ok := strings.CutPrefix(line, "RESULT_CODE:")
		if !ok {
			continue
		}
		code := strings.TrimSpace(rest)
		if code == "" {
			return "", fmt.Errorf("empty RESULT_CODE line")
		}
		return code, nil
	}
	return "", fmt.Errorf("no RESULT_CODE line in reply %q", strings.TrimSpace(reply))
}
