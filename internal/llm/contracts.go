// Package llm defines the contracts between the pipeline and the AI models,
// plus the model-agnostic plumbing: response sanitization, schema validation,
// prompt construction, throttling and manual overrides. The Gemini-backed
// implementation lives in the gemini subpackage.
package llm

import (
	"context"
	"errors"
)

// Model failures map to per-item sentinel values in the output instead of
// aborting a batch, so the error kind must survive wrapping.
var (
	// ErrMissingAPIKey is returned by clients constructed without credentials.
	ErrMissingAPIKey = errors.New("llm: API key is not configured")

	// ErrDecode marks a response that is not decodable JSON even after repair.
	ErrDecode = errors.New("llm: response is not valid JSON")

	// ErrBadFormat marks a decodable response with the wrong shape, typically
	// an object where a list was required.
	ErrBadFormat = errors.New("llm: response has unexpected shape")
)

// ExtractedItem is one invoice line as the vision model reads it off a page.
// All values are strings at this stage; parsing and validation happen in the
// pipeline.
type ExtractedItem struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalPrice  string `json:"total_price"`
}

// PageExtraction is the structured result for a single invoice page.
type PageExtraction struct {
	InvoiceNumber string          `json:"invoice_number"`
	Country       string          `json:"country"`
	Currency      string          `json:"currency"`
	Items         []ExtractedItem `json:"items"`
}

// Extractor turns a scanned invoice page into structured line items.
type Extractor interface {
	ExtractPage(ctx context.Context, image []byte, mimeType string, pageNumber int) (*PageExtraction, error)
}

// WeightItem describes one product line sent to the weight proposer.
type WeightItem struct {
	Code           string  `json:"code"`
	Description    string  `json:"description"`
	Quantity       float64 `json:"quantity"`
	ProvisionalNet float64 `json:"provisional_net_kg"`
}

// WeightProposal is the model's estimate for a single product line. Keys in
// the proposal map are item codes.
type WeightProposal struct {
	NetKg   float64 `json:"net_kg"`
	GrossKg float64 `json:"gross_kg"`
}

// WeightProposer distributes a shipment's measured weights across its items.
// Proposals are advisory: the reallocation engine corrects them so the totals
// match the targets exactly.
type WeightProposer interface {
	ProposeWeights(ctx context.Context, items []WeightItem, targetNet, targetGross float64) (map[string]WeightProposal, error)
}

// TariffAssigner maps a product line to a customs tariff code from the
// allowed set, or reports that it cannot decide.
type TariffAssigner interface {
	AssignTariff(ctx context.Context, code, description string, allowedCodes []string) (string, error)
}
