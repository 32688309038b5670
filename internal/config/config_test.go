package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DATA_DIR", "")

	cfg := FromEnv()
	assert.Equal(t, "invoices_inbox", cfg.InboxDir)
	assert.Equal(t, filepath.Join("data", "product_weight.csv"), cfg.WeightTableFile)
	assert.Equal(t, 50, cfg.MaxPDFSizeMB)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/intrastat/data")
	t.Setenv("MAX_PDF_SIZE_MB", "5")
	t.Setenv("AI_RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, filepath.Join("/srv/intrastat/data", "tariff_codes.csv"), cfg.TariffTableFile)
	assert.Equal(t, 5, cfg.MaxPDFSizeMB)
	assert.Equal(t, 30, cfg.RateLimitPerMin) // unparseable falls back to the default
}

func TestValidateRequiresReferenceFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := FromEnv()
	cfg.WeightTableFile = filepath.Join(dir, "product_weight.csv")
	cfg.TariffTableFile = filepath.Join(dir, "tariff_codes.csv")

	require.Error(t, cfg.Validate())

	require.NoError(t, os.WriteFile(cfg.WeightTableFile, []byte("h\n"), 0o644))
	require.NoError(t, os.WriteFile(cfg.TariffTableFile, []byte("h\n"), 0o644))
	assert.NoError(t, cfg.Validate())

	cfg.MaxPDFSizeMB = 0
	assert.Error(t, cfg.Validate())
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Config{
		InboxDir:     filepath.Join(base, "inbox"),
		OutputDir:    filepath.Join(base, "out"),
		ProcessedDir: filepath.Join(base, "done"),
		ReportsDir:   filepath.Join(base, "reports"),
		ArchiveDir:   filepath.Join(base, "archive"),
	}
	require.NoError(t, cfg.EnsureDirectories())
	for _, d := range []string{cfg.InboxDir, cfg.OutputDir, cfg.ProcessedDir, cfg.ReportsDir, cfg.ArchiveDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
