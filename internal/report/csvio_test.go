package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrastat-assistant/constants"
	"intrastat-assistant/internal/entity"
)

func sampleItems() []entity.LineItem {
	product := entity.LineItem{
		PageNumber:        1,
		InvoiceNumber:     "FV-2024-001",
		ItemCode:          "CZ-1263.1",
		RawCode:           "CZ-1263.1",
		Description:       "Smoke detector",
		Country:           "CZ",
		Quantity:          decimal.RequireFromString("2"),
		QuantityOK:        true,
		UnitPrice:         decimal.RequireFromString("10.50"),
		TotalPrice:        decimal.RequireFromString("21.00"),
		IsProduct:         true,
		Provisional:       entity.Kilograms(0.9),
		FinalNet:          entity.Kilograms(1.234),
		FinalGross:        entity.Kilograms(1.456),
		TariffCode:        "85311030",
		TariffDescription: "Burglar or fire alarms",
	}
	missing := entity.LineItem{
		PageNumber:    1,
		InvoiceNumber: "FV-2024-001",
		ItemCode:      "XX-404",
		RawCode:       "XX-404",
		Description:   "Unknown bracket",
		Quantity:      decimal.RequireFromString("1"),
		QuantityOK:    true,
		IsProduct:     true,
		Provisional:   entity.Tagged(constants.TagNotFound),
		FinalNet:      entity.Tagged(constants.TagNotFound),
		FinalGross:    entity.Tagged(constants.TagNotFound),
		TariffCode:    constants.TariffUndetermined,
	}
	failed := entity.FailedPageItem(2, "FV-2024-001", "model timeout")
	return []entity.LineItem{product, missing, failed}
}

func TestDetailCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detail.csv")
	require.NoError(t, WriteDetailCSV(path, sampleItems()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.True(t, strings.HasPrefix(text, "\xEF\xBB\xBF"), "missing BOM")
	assert.Contains(t, text, "1,234")
	assert.Contains(t, text, "1,456")
	assert.Contains(t, text, string(constants.TagNotFound))

	rows, err := ReadDetailCSV(path, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "CZ-1263.1", rows[0].ItemCode)
	assert.Equal(t, "FV-2024-001", rows[0].InvoiceNumber)
	require.True(t, rows[0].NetOK)
	assert.InDelta(t, 1.234, rows[0].NetKg, 1e-9)
	assert.InDelta(t, 1.456, rows[0].GrossKg, 1e-9)
	assert.True(t, rows[0].Quantity.Equal(decimal.RequireFromString("2")))
	assert.True(t, rows[0].TotalPrice.Equal(decimal.RequireFromString("21.00")))

	// Sentinel weights come back as not-a-number, counted as zero later.
	assert.False(t, rows[1].NetOK)
	assert.False(t, rows[1].GrossOK)

	assert.True(t, rows[2].PageFailed)
	assert.Equal(t, 2, rows[2].PageNumber)
}

func TestReadDetailCSVRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.csv")
	require.NoError(t, os.WriteFile(path, []byte("a;b;c\n1;2;3\n"), 0o644))
	_, err := ReadDetailCSV(path, nil)
	require.Error(t, err)
}

func TestWriteSummaryCSVFormat(t *testing.T) {
	rows := []SummaryRow{
		{TariffCode: "85311030", Country: "CZ", GrossKg: 2.5, NetKg: 2, Quantity: decimal.RequireFromString("3"), Price: decimal.RequireFromString("150")},
		{TariffCode: constants.GrandTotalKey, Country: "", GrossKg: 2.5, NetKg: 2, Quantity: decimal.RequireFromString("3"), Price: decimal.RequireFromString("150")},
	}
	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, WriteSummaryCSV(path, rows))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, strings.Join(constants.SummaryHeaders, ";"))
	assert.Contains(t, text, "85311030;CZ;2,50;2,00;3,0;150,00")
	assert.Contains(t, text, constants.GrandTotalKey+";;2,50")
}

func TestServiceGeneratesAndArchives(t *testing.T) {
	outputDir := t.TempDir()
	reportsDir := t.TempDir()
	archiveDir := t.TempDir()

	detail := filepath.Join(outputDir, "processed_invoice_FV-2024-001.csv")
	require.NoError(t, WriteDetailCSV(detail, sampleItems()))
	require.NoError(t, os.WriteFile(detail+".meta", []byte(`{"source_pdf":"inv.pdf"}`), 0o644))

	svc := NewService(outputDir, reportsDir, archiveDir, true, nil)
	reports, err := svc.GenerateAll()
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.FileExists(t, reports[0])
	assert.FileExists(t, strings.TrimSuffix(reports[0], ".csv")+".xlsx")

	// Consumed files moved to the archive.
	assert.NoFileExists(t, detail)
	assert.NoFileExists(t, detail+".meta")
	assert.FileExists(t, filepath.Join(archiveDir, filepath.Base(detail)))
	assert.FileExists(t, filepath.Join(archiveDir, filepath.Base(detail)+".meta"))

	rows, err := ReadDetailCSV(filepath.Join(archiveDir, filepath.Base(detail)), nil)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
