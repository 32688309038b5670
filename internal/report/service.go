package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Service turns the detail CSVs accumulated in the output directory into
// declaration summaries, one report per processed invoice, and archives the
// consumed files.
type Service struct {
	outputDir  string
	reportsDir string
	archiveDir string
	writeXLSX  bool
	logger     *slog.Logger
}

func NewService(outputDir, reportsDir, archiveDir string, writeXLSX bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		outputDir:  outputDir,
		reportsDir: reportsDir,
		archiveDir: archiveDir,
		writeXLSX:  writeXLSX,
		logger:     logger,
	}
}

// GenerateAll processes every detail CSV in the output directory and returns
// the paths of the written reports. A failing file is logged and skipped so
// the remaining invoices still get their reports.
func (s *Service) GenerateAll() ([]string, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("read output dir %s: %w", s.outputDir, err)
	}
	var details []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			details = append(details, filepath.Join(s.outputDir, e.Name()))
		}
	}
	sort.Strings(details)

	var reports []string
	for _, detail := range details {
		path, err := s.GenerateOne(detail)
		if err != nil {
			s.logger.Error("report.generate.failed", "detail", detail, "error", err)
			continue
		}
		reports = append(reports, path)
	}
	return reports, nil
}

// GenerateOne builds the summary for a single detail CSV, writes it to the
// reports directory and archives the detail file with its meta sidecar.
func (s *Service) GenerateOne(detailPath string) (string, error) {
	start := time.Now()

	rows, err := ReadDetailCSV(detailPath, s.logger)
	if err != nil {
		return "", err
	}
	summary := Aggregate(rows)

	if err := os.MkdirAll(s.reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	name := reportName(detailPath)
	reportPath := filepath.Join(s.reportsDir, name+".csv")
	if err := WriteSummaryCSV(reportPath, summary); err != nil {
		return "", err
	}
	if s.writeXLSX {
		if err := WriteSummaryXLSX(filepath.Join(s.reportsDir, name+".xlsx"), summary); err != nil {
			return "", err
		}
	}

	if err := s.archive(detailPath); err != nil {
		// The report exists; losing the archive move must not undo that.
		s.logger.Warn("report.archive.failed", "detail", detailPath, "error", err)
	}

	s.logger.Info("report.generate.done",
		"detail", detailPath,
		"report", reportPath,
		"rows", len(summary),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return reportPath, nil
}

// archive moves the consumed detail CSV and its .meta sidecar out of the
// output directory.
func (s *Service) archive(detailPath string) error {
	if err := os.MkdirAll(s.archiveDir, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	targets := []string{detailPath, detailPath + ".meta"}
	for _, src := range targets {
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		dst := filepath.Join(s.archiveDir, filepath.Base(src))
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("archive %s: %w", src, err)
		}
	}
	return nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

func reportName(detailPath string) string {
	base := filepath.Base(detailPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return "report_" + unsafeNameChars.ReplaceAllString(base, "_")
}
