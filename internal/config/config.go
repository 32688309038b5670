package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds everything the pipeline needs, loaded once at startup and
// passed down explicitly. No package keeps ambient configuration state.
type Config struct {
	GeminiAPIKey string

	// Model names; the tariff classifier may use a cheaper model than the
	// vision extraction.
	ExtractionModel string
	TariffModel     string

	InboxDir     string // PDFs waiting to be processed
	OutputDir    string // per-invoice detail CSVs
	ProcessedDir string // PDFs already turned into a detail CSV
	DataDir      string // reference tables
	ReportsDir   string // aggregated summary reports
	ArchiveDir   string // consumed detail CSVs and meta files

	WeightTableFile string
	TariffTableFile string

	MaxPDFSizeMB    int
	RateLimitPerMin int

	LogLevel string
}

// FromEnv builds a Config from environment variables, filling defaults for
// everything optional. Call Validate before use.
func FromEnv() Config {
	cfg := Config{
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		ExtractionModel: envOr("EXTRACTION_MODEL", "gemini-2.0-flash"),
		TariffModel:     envOr("TARIFF_MODEL", "gemini-2.0-flash-lite"),
		InboxDir:        envOr("INBOX_DIR", "invoices_inbox"),
		OutputDir:       envOr("OUTPUT_DIR", "data_output"),
		ProcessedDir:    envOr("PROCESSED_DIR", "invoices_processed"),
		DataDir:         envOr("DATA_DIR", "data"),
		ReportsDir:      envOr("REPORTS_DIR", "reports"),
		ArchiveDir:      envOr("ARCHIVE_DIR", "data_output_archive"),
		MaxPDFSizeMB:    envOrInt("MAX_PDF_SIZE_MB", 50),
		RateLimitPerMin: envOrInt("AI_RATE_LIMIT_PER_MINUTE", 30),
		LogLevel:        envOr("LOG_LEVEL", "info"),
	}
	cfg.WeightTableFile = filepath.Join(cfg.DataDir, "product_weight.csv")
	cfg.TariffTableFile = filepath.Join(cfg.DataDir, "tariff_codes.csv")
	return cfg
}

// Validate fails fast on the configuration errors that abort the whole run:
// missing reference files and nonsense limits. A missing API key is not one
// of them; the pipeline degrades to offline mode with sentinel values.
func (c Config) Validate() error {
	for _, f := range []string{c.WeightTableFile, c.TariffTableFile} {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("required reference file %s: %w", f, err)
		}
	}
	if c.MaxPDFSizeMB <= 0 {
		return fmt.Errorf("MAX_PDF_SIZE_MB must be positive, got %d", c.MaxPDFSizeMB)
	}
	if c.RateLimitPerMin <= 0 {
		return fmt.Errorf("AI_RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMin)
	}
	return nil
}

// EnsureDirectories creates the working directories that may not exist yet.
func (c Config) EnsureDirectories() error {
	for _, dir := range []string{c.InboxDir, c.OutputDir, c.ProcessedDir, c.ReportsDir, c.ArchiveDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
