package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"intrastat-assistant/constants"
	"intrastat-assistant/internal/classify"
	"intrastat-assistant/internal/entity"
	"intrastat-assistant/internal/llm"
	"intrastat-assistant/internal/pdf"
	"intrastat-assistant/internal/realloc"
	"intrastat-assistant/internal/refdata"
	"intrastat-assistant/internal/report"
)

// ProcessorConfig holds the directory layout and limits for a batch run.
type ProcessorConfig struct {
	InboxDir     string
	OutputDir    string
	ProcessedDir string
	MaxPDFSizeMB int
}

// Processor drives one invoice PDF end to end: page extraction, provisional
// weights, operator-confirmed reallocation, tariff assignment and the detail
// CSV. Model access is behind interfaces so offline runs swap in the
// deterministic proposer and no tariff assigner.
type Processor struct {
	cfg       ProcessorConfig
	pages     pdf.PageImageSource
	extractor llm.Extractor
	tariff    llm.TariffAssigner
	engine    *realloc.Engine
	store     *refdata.Store
	targets   TargetWeightSource
	countries CountryResolver
	logger    *slog.Logger
}

func NewProcessor(
	cfg ProcessorConfig,
	pages pdf.PageImageSource,
	extractor llm.Extractor,
	tariff llm.TariffAssigner,
	engine *realloc.Engine,
	store *refdata.Store,
	targets TargetWeightSource,
	countries CountryResolver,
	logger *slog.Logger,
) *Processor {
	if countries == nil {
		countries = OverrideCountryResolver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		cfg:       cfg,
		pages:     pages,
		extractor: extractor,
		tariff:    tariff,
		engine:    engine,
		store:     store,
		targets:   targets,
		countries: countries,
		logger:    logger,
	}
}

// ProcessInbox runs every PDF waiting in the inbox. One failing PDF is
// logged and left in place; the rest of the batch continues.
func (p *Processor) ProcessInbox(ctx context.Context) (*BatchMetrics, error) {
	pdfs, err := pdf.ListInbox(p.cfg.InboxDir)
	if err != nil {
		return nil, err
	}
	metrics := newBatchMetrics()
	for _, path := range pdfs {
		if err := ctx.Err(); err != nil {
			return metrics, err
		}
		if err := p.ProcessOne(ctx, path, metrics); err != nil {
			metrics.FailedPDFs++
			p.logger.Error("pipeline.pdf.failed", "path", path, "error", err)
			continue
		}
		metrics.PDFs++
	}
	metrics.log(p.logger)
	return metrics, nil
}

// ProcessOne handles a single invoice PDF and writes its detail CSV.
func (p *Processor) ProcessOne(ctx context.Context, path string, metrics *BatchMetrics) error {
	start := time.Now()
	p.logger.Info("pipeline.pdf.start", "path", path)

	if err := pdf.CheckSize(path, p.cfg.MaxPDFSizeMB); err != nil {
		return err
	}
	pages, err := p.pages.Pages(ctx, path)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("%s has no page scans", path)
	}

	items, invoiceNumber := p.extractItems(ctx, pages, metrics)
	if invoiceNumber == "" {
		base := filepath.Base(path)
		invoiceNumber = strings.TrimSuffix(base, filepath.Ext(base))
		for i := range items {
			if items[i].InvoiceNumber == "" {
				items[i].InvoiceNumber = invoiceNumber
			}
		}
	}
	metrics.Items += len(items)
	for _, it := range items {
		if it.IsProduct {
			metrics.Products++
		}
	}

	weights, err := p.store.Weights()
	if err != nil {
		return err
	}
	realloc.FillProvisionalWeights(items, weights)

	provisionalSum := 0.0
	for _, it := range items {
		if it.Provisional.Valid() {
			provisionalSum += it.Provisional.Kg
		}
	}

	target, ok, err := p.targets.Targets(ctx, invoiceNumber, provisionalSum)
	if err != nil {
		return err
	}
	if ok {
		if err := p.engine.Reallocate(ctx, items, target); err != nil {
			return err
		}
	} else {
		p.logger.Info("pipeline.realloc.skipped", "invoice", invoiceNumber)
		realloc.ApplyFallback(items)
	}

	if err := p.assignTariffs(ctx, items); err != nil {
		return err
	}

	detailPath := filepath.Join(p.cfg.OutputDir, detailFileName(invoiceNumber, path))
	if err := report.WriteDetailCSV(detailPath, items); err != nil {
		return err
	}
	if err := p.writeMeta(detailPath, path, invoiceNumber, target, ok, len(items)); err != nil {
		return err
	}
	processedPath, err := pdf.MoveToProcessed(path, p.cfg.ProcessedDir)
	if err != nil {
		return err
	}

	p.logger.Info("pipeline.pdf.done",
		"path", path,
		"invoice", invoiceNumber,
		"detail", detailPath,
		"processed", processedPath,
		"items", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// extractItems runs the vision extraction page by page. The invoice number,
// country and currency usually appear on the first page only, so the last
// seen values carry forward to later pages. A failed page becomes a sentinel
// row instead of failing the document.
func (p *Processor) extractItems(ctx context.Context, pages []pdf.PageImage, metrics *BatchMetrics) ([]entity.LineItem, string) {
	var items []entity.LineItem
	var invoiceNumber, country, currency string

	for _, page := range pages {
		metrics.Pages++
		ext, err := p.extractor.ExtractPage(ctx, page.Data, page.MIMEType, page.PageNumber)
		if err != nil {
			metrics.FailedPages++
			p.logger.Error("pipeline.page.failed", "page", page.PageNumber, "error", err)
			items = append(items, entity.FailedPageItem(page.PageNumber, invoiceNumber, err.Error()))
			continue
		}
		if v := strings.TrimSpace(ext.InvoiceNumber); v != "" {
			invoiceNumber = v
		}
		if v := strings.TrimSpace(ext.Country); v != "" {
			country = v
		}
		if v := strings.TrimSpace(ext.Currency); v != "" {
			currency = v
		}
		for _, raw := range ext.Items {
			items = append(items, p.buildItem(raw, page.PageNumber, invoiceNumber, country, currency))
		}
	}

	// Pages before the first invoice number got an empty one; backfill.
	for i := range items {
		if items[i].InvoiceNumber == "" {
			items[i].InvoiceNumber = invoiceNumber
		}
	}
	return items, invoiceNumber
}

func (p *Processor) buildItem(raw llm.ExtractedItem, pageNumber int, invoiceNumber, country, currency string) entity.LineItem {
	code := strings.TrimSpace(raw.Code)
	description := strings.TrimSpace(raw.Description)

	it := entity.LineItem{
		PageNumber:    pageNumber,
		InvoiceNumber: invoiceNumber,
		RawCode:       code,
		Description:   description,
		Currency:      currency,
		RawQuantity:   strings.TrimSpace(raw.Quantity),
		UnitPrice:     parsePrice(raw.UnitPrice),
		TotalPrice:    parsePrice(raw.TotalPrice),
		IsProduct:     classify.IsProduct(code, description),
	}
	it.ItemCode = code
	if it.ItemCode == "" {
		it.ItemCode = description
	}
	if qty, err := entity.ParseQuantity(raw.Quantity); err == nil {
		it.Quantity = qty
		it.QuantityOK = true
	}
	if it.IsProduct {
		it.Country = p.countries.Resolve(it.ItemCode, country)
	} else if c, ok := normalizeCountry(country); ok {
		it.Country = c
	}
	return it
}

// assignTariffs sets the tariff code on every product line: manual override
// first, then the model, validated against the reference table. Failures
// downgrade to UNDETERMINED.
func (p *Processor) assignTariffs(ctx context.Context, items []entity.LineItem) error {
	tariffs, err := p.store.Tariffs()
	if err != nil {
		return err
	}
	for i := range items {
		it := &items[i]
		if !it.IsProduct || it.PageFailed {
			continue
		}
		it.TariffCode = p.tariffFor(ctx, it, tariffs)
		if desc, ok := tariffs.Description(it.TariffCode); ok {
			it.TariffDescription = desc
		}
	}
	return nil
}

func (p *Processor) tariffFor(ctx context.Context, it *entity.LineItem, tariffs *refdata.TariffTable) string {
	if code, ok := llm.TariffOverride(it.RawCode); ok {
		return refdata.NormalizeTariffCode(code)
	}
	if p.tariff == nil {
		return constants.TariffUndetermined
	}
	answer, err := p.tariff.AssignTariff(ctx, it.ItemCode, it.Description, tariffs.Codes())
	if err != nil {
		p.logger.Warn("pipeline.tariff.failed", "item_code", it.ItemCode, "error", err)
		return constants.TariffUndetermined
	}
	if answer == constants.TariffUndetermined {
		return constants.TariffUndetermined
	}
	code := refdata.NormalizeTariffCode(answer)
	if !tariffs.Contains(code) {
		p.logger.Warn("pipeline.tariff.unknown_code", "item_code", it.ItemCode, "code", answer)
		return constants.TariffUndetermined
	}
	return code
}

// meta is the sidecar written next to each detail CSV. The report stage
// archives it together with the CSV.
type meta struct {
	SourcePDF       string    `json:"source_pdf"`
	InvoiceNumber   string    `json:"invoice_number"`
	Items           int       `json:"items"`
	TargetNetKg     float64   `json:"target_net_kg,omitempty"`
	TargetGrossKg   float64   `json:"target_gross_kg,omitempty"`
	TargetsSupplied bool      `json:"targets_supplied"`
	ProcessedAt     time.Time `json:"processed_at"`
}

func (p *Processor) writeMeta(detailPath, pdfPath, invoiceNumber string, target entity.ReallocationTarget, supplied bool, itemCount int) error {
	m := meta{
		SourcePDF:       filepath.Base(pdfPath),
		InvoiceNumber:   invoiceNumber,
		Items:           itemCount,
		TargetsSupplied: supplied,
		ProcessedAt:     time.Now().UTC(),
	}
	if supplied {
		m.TargetNetKg = target.NetKg
		m.TargetGrossKg = target.GrossKg
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	if err := os.WriteFile(detailPath+".meta", b, 0o644); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

func detailFileName(invoiceNumber, pdfPath string) string {
	stem := invoiceNumber
	if stem == "" {
		base := filepath.Base(pdfPath)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "processed_invoice_" + unsafeFileChars.ReplaceAllString(stem, "_") + ".csv"
}

func parsePrice(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	// Invoices print "1 234,56" and "1,234.56"; the last separator is the
	// decimal point, everything before it is grouping.
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if sep := strings.LastIndexAny(s, ",."); sep >= 0 {
		intPart := strings.NewReplacer(",", "", ".", "").Replace(s[:sep])
		s = intPart + "." + s[sep+1:]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
