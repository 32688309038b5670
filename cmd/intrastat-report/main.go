// Command intrastat-report generates declaration summaries from accumulated
// detail CSVs without the interactive menu, for cron jobs and scripting.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"intrastat-assistant/internal/config"
	"intrastat-assistant/internal/report"
)

func main() {
	var (
		in      = flag.String("in", "", "directory with detail CSVs (default: OUTPUT_DIR from the environment)")
		out     = flag.String("out", "", "directory for the summary reports (default: REPORTS_DIR)")
		archive = flag.String("archive", "", "directory for consumed detail CSVs (default: ARCHIVE_DIR)")
		xlsx    = flag.Bool("xlsx", false, "also write each summary as an XLSX workbook")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	cfg := config.FromEnv()
	if *in == "" {
		*in = cfg.OutputDir
	}
	if *out == "" {
		*out = cfg.ReportsDir
	}
	if *archive == "" {
		*archive = cfg.ArchiveDir
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	svc := report.NewService(*in, *out, *archive, *xlsx, logger)
	reports, err := svc.GenerateAll()
	if err != nil {
		logger.Error("report generation failed", "error", err)
		os.Exit(1)
	}
	if len(reports) == 0 {
		fmt.Printf("No detail CSVs found in %s.\n", *in)
		return
	}
	for _, r := range reports {
		fmt.Println(r)
	}
}
