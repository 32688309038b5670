// Command intrastat is the interactive assistant: it walks invoices from the
// inbox through extraction and weight reallocation, and produces the customs
// declaration summaries.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"intrastat-assistant/internal/config"
	"intrastat-assistant/internal/llm"
	"intrastat-assistant/internal/llm/gemini"
	"intrastat-assistant/internal/pdf"
	"intrastat-assistant/internal/pipeline"
	"intrastat-assistant/internal/realloc"
	"intrastat-assistant/internal/refdata"
	"intrastat-assistant/internal/report"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	cfg := config.FromEnv()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	app.run(context.Background())
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

type app struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *refdata.Store
	processor *pipeline.Processor
	reports   *report.Service
	offline   bool
	stdin     *bufio.Scanner
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	store := refdata.NewStore(cfg.WeightTableFile, cfg.TariffTableFile, logger)

	var (
		proposer llm.WeightProposer
		assigner llm.TariffAssigner
	)
	extractor := llm.Extractor(nil)
	offline := cfg.GeminiAPIKey == ""
	if offline {
		logger.Warn("GEMINI_API_KEY not set, running offline: no page extraction, proportional weight split, no tariff assignment")
		proposer = realloc.ProportionalProposer{}
	} else {
		throttle := llm.NewThrottle(cfg.RateLimitPerMin)
		client, err := gemini.NewClient(context.Background(), gemini.Config{
			APIKey:          cfg.GeminiAPIKey,
			ExtractionModel: cfg.ExtractionModel,
			TariffModel:     cfg.TariffModel,
		}, throttle, logger)
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		extractor = client
		proposer = client
		assigner = client
	}

	engine := realloc.NewEngine(proposer, logger)
	processor := pipeline.NewProcessor(
		pipeline.ProcessorConfig{
			InboxDir:     cfg.InboxDir,
			OutputDir:    cfg.OutputDir,
			ProcessedDir: cfg.ProcessedDir,
			MaxPDFSizeMB: cfg.MaxPDFSizeMB,
		},
		pdf.NewExtractor(logger),
		extractor,
		assigner,
		engine,
		store,
		pipeline.NewConsoleTargetSource(os.Stdin, os.Stdout),
		pipeline.NewConsoleCountryResolver(os.Stdin, os.Stdout),
		logger,
	)
	reports := report.NewService(cfg.OutputDir, cfg.ReportsDir, cfg.ArchiveDir, true, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		processor: processor,
		reports:   reports,
		offline:   offline,
		stdin:     bufio.NewScanner(os.Stdin),
	}, nil
}

func (a *app) run(ctx context.Context) {
	for {
		fmt.Println()
		fmt.Println(strings.Repeat("=", 50))
		fmt.Println("        INTRASTAT ASSISTANT")
		fmt.Println(strings.Repeat("=", 50))
		fmt.Println("1. Process new invoice PDFs")
		fmt.Println("2. Generate declaration summaries")
		fmt.Println("3. Show tariff codes")
		fmt.Println("4. Validate reference data")
		fmt.Println("5. Show processing status")
		fmt.Println("6. Quit")
		fmt.Println(strings.Repeat("=", 50))
		fmt.Print("Your choice (1-6): ")

		if !a.stdin.Scan() {
			return
		}
		switch strings.TrimSpace(a.stdin.Text()) {
		case "1":
			a.processInbox(ctx)
		case "2":
			a.generateReports()
		case "3":
			a.showTariffCodes()
		case "4":
			a.validateReferenceData()
		case "5":
			a.showStatus()
		case "6":
			fmt.Println("Bye.")
			return
		default:
			fmt.Println("Please pick a number between 1 and 6.")
		}
	}
}

func (a *app) processInbox(ctx context.Context) {
	if a.offline {
		fmt.Println("Page extraction needs a GEMINI_API_KEY; set it and restart.")
		return
	}
	pdfs, err := pdf.ListInbox(a.cfg.InboxDir)
	if err != nil {
		a.logger.Error("list inbox", "error", err)
		return
	}
	if len(pdfs) == 0 {
		fmt.Printf("No PDF files waiting in %s.\n", a.cfg.InboxDir)
		return
	}
	fmt.Printf("Found %d PDF file(s):\n", len(pdfs))
	for _, p := range pdfs {
		fmt.Printf("  - %s\n", p)
	}
	fmt.Print("Process all of them? (y/n): ")
	if !a.stdin.Scan() || strings.ToLower(strings.TrimSpace(a.stdin.Text())) != "y" {
		fmt.Println("Cancelled.")
		return
	}

	metrics, err := a.processor.ProcessInbox(ctx)
	if err != nil {
		a.logger.Error("batch aborted", "error", err)
		return
	}
	fmt.Printf("Done: %d processed, %d failed, %d items extracted.\n", metrics.PDFs, metrics.FailedPDFs, metrics.Items)
}

func (a *app) generateReports() {
	reports, err := a.reports.GenerateAll()
	if err != nil {
		a.logger.Error("report generation", "error", err)
		return
	}
	if len(reports) == 0 {
		fmt.Printf("Nothing to report: no detail CSVs in %s.\n", a.cfg.OutputDir)
		return
	}
	for _, r := range reports {
		fmt.Printf("Report written: %s\n", r)
	}
}

func (a *app) showTariffCodes() {
	tariffs, err := a.store.Tariffs()
	if err != nil {
		a.logger.Error("load tariff table", "error", err)
		return
	}
	fmt.Println(strings.Repeat("-", 70))
	for _, code := range tariffs.Codes() {
		desc, _ := tariffs.Description(code)
		fmt.Printf("%-12s %s\n", code, desc)
	}
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("%d tariff codes loaded.\n", tariffs.Len())
}

func (a *app) validateReferenceData() {
	ok := true
	weights, err := a.store.Weights()
	if err != nil {
		fmt.Printf("Weight table: FAILED (%v)\n", err)
		ok = false
	} else {
		fmt.Printf("Weight table: OK, %d products.\n", weights.Len())
	}
	tariffs, err := a.store.Tariffs()
	if err != nil {
		fmt.Printf("Tariff table: FAILED (%v)\n", err)
		ok = false
	} else {
		fmt.Printf("Tariff table: OK, %d codes.\n", tariffs.Len())
		if !llm.OverriddenTariffValid(tariffs) {
			fmt.Println("Warning: a manual tariff override points at a code missing from the table.")
			ok = false
		}
	}
	if ok {
		fmt.Println("All reference data is in order.")
	}
}

func (a *app) showStatus() {
	fmt.Printf("Inbox:     %d PDF(s) in %s\n", countFiles(a.cfg.InboxDir, ".pdf"), a.cfg.InboxDir)
	fmt.Printf("Pending:   %d detail CSV(s) in %s\n", countFiles(a.cfg.OutputDir, ".csv"), a.cfg.OutputDir)
	fmt.Printf("Processed: %d PDF(s) in %s\n", countFiles(a.cfg.ProcessedDir, ".pdf"), a.cfg.ProcessedDir)
	fmt.Printf("Reports:   %d file(s) in %s\n", countFiles(a.cfg.ReportsDir, ""), a.cfg.ReportsDir)
}

// countFiles counts regular files in dir, filtered by extension when ext is
// not empty.
func countFiles(dir, ext string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext == "" || strings.EqualFold(filepath.Ext(e.Name()), ext) {
			n++
		}
	}
	return n
}
