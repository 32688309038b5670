// Package gemini implements the llm contracts on top of the Google GenAI
// SDK. One client serves all three interactions (page extraction, weight
// proposals, tariff assignment) so they share a throttle and credentials.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"intrastat-assistant/internal/llm"
)

// Client talks to the Gemini API. It implements llm.Extractor,
// llm.WeightProposer and llm.TariffAssigner.
type Client struct {
	cfg      Config
	logger   *slog.Logger
	throttle *llm.Throttle
	genai    *genai.Client
}

var (
	_ llm.Extractor      = (*Client)(nil)
	_ llm.WeightProposer = (*Client)(nil)
	_ llm.TariffAssigner = (*Client)(nil)
)

// NewClient builds a Gemini-backed client. Returns llm.ErrMissingAPIKey when
// no key is configured so callers can downgrade to sentinel values.
func NewClient(ctx context.Context, cfg Config, throttle *llm.Throttle, logger *slog.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, llm.ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{cfg: cfg, logger: logger, throttle: throttle, genai: gc}, nil
}

// ExtractPage reads one scanned invoice page image into structured items.
func (c *Client) ExtractPage(ctx context.Context, image []byte, mimeType string, pageNumber int) (*llm.PageExtraction, error) {
	reqID := uuid.NewString()
	start := time.Now()
	c.logger.Info("llm.extract.start", "req_id", reqID, "page", pageNumber, "model", c.cfg.ExtractionModel, "image_bytes", len(image))

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: llm.BuildExtractionPrompt(pageNumber)},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		},
	}}
	raw, err := c.generate(ctx, c.cfg.ExtractionModel, contents, true)
	if err != nil {
		return nil, fmt.Errorf("extract page %d: %w", pageNumber, err)
	}

	cleaned, err := llm.SanitizeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("extract page %d: %w", pageNumber, err)
	}
	if err := llm.ValidatePageExtraction([]byte(cleaned)); err != nil {
		return nil, fmt.Errorf("extract page %d: %w", pageNumber, err)
	}
	var out llm.PageExtraction
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("extract page %d: decode: %w", pageNumber, err)
	}

	c.logger.Info("llm.extract.done", "req_id", reqID, "page", pageNumber, "items", len(out.Items), "elapsed_ms", time.Since(start).Milliseconds())
	return &out, nil
}

// ProposeWeights asks the model to split the shipment totals across items.
func (c *Client) ProposeWeights(ctx context.Context, items []llm.WeightItem, targetNet, targetGross float64) (map[string]llm.WeightProposal, error) {
	reqID := uuid.NewString()
	start := time.Now()
	c.logger.Info("llm.propose.start", "req_id", reqID, "items", len(items), "target_net_kg", targetNet, "target_gross_kg", targetGross)

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: llm.BuildWeightProposalPrompt(items, targetNet, targetGross)}},
	}}
	raw, err := c.generate(ctx, c.cfg.ExtractionModel, contents, true)
	if err != nil {
		return nil, fmt.Errorf("propose weights: %w", err)
	}

	cleaned, err := llm.SanitizeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("propose weights: %w: %v", llm.ErrDecode, err)
	}
	if err := llm.ValidateWeightProposal([]byte(cleaned)); err != nil {
		return nil, fmt.Errorf("propose weights: %w: %v", llm.ErrBadFormat, err)
	}
	var rows []struct {
		Code    string  `json:"code"`
		NetKg   float64 `json:"net_kg"`
		GrossKg float64 `json:"gross_kg"`
	}
	if err := json.Unmarshal([]byte(cleaned), &rows); err != nil {
		return nil, fmt.Errorf("propose weights: %w: %v", llm.ErrDecode, err)
	}
	proposals := make(map[string]llm.WeightProposal, len(rows))
	for _, r := range rows {
		proposals[r.Code] = llm.WeightProposal{NetKg: r.NetKg, GrossKg: r.GrossKg}
	}

	c.logger.Info("llm.propose.done", "req_id", reqID, "proposals", len(proposals), "elapsed_ms", time.Since(start).Milliseconds())
	return proposals, nil
}

// AssignTariff returns a tariff code from allowedCodes, or "UNDETERMINED".
func (c *Client) AssignTariff(ctx context.Context, code, description string, allowedCodes []string) (string, error) {
	reqID := uuid.NewString()
	start := time.Now()
	c.logger.Info("llm.tariff.start", "req_id", reqID, "item_code", code, "model", c.cfg.TariffModel)

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: llm.BuildTariffPrompt(code, description, allowedCodes)}},
	}}
	raw, err := c.generate(ctx, c.cfg.TariffModel, contents, false)
	if err != nil {
		return "", fmt.Errorf("assign tariff for %s: %w", code, err)
	}
	result, err := llm.ParseTariffReply(raw)
	if err != nil {
		return "", fmt.Errorf("assign tariff for %s: %w", code, err)
	}

	c.logger.Info("llm.tariff.done", "req_id", reqID, "item_code", code, "result", result, "elapsed_ms", time.Since(start).Milliseconds())
	return result, nil
}

func (c *Client) generate(ctx context.Context, model string, contents []*genai.Content, jsonMode bool) (string, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return "", err
	}
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.cfg.Temperature),
	}
	if jsonMode {
		cfg.ResponseMIMEType = "application/json"
	}
	result, err := c.genai.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generation: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return text, nil
}
