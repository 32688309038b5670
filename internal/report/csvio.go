// Package report writes and reads the per-invoice detail CSVs and aggregates
// them into the Intrastat declaration summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"intrastat-assistant/constants"
	"intrastat-assistant/internal/entity"
)

// Detail files are written for spreadsheet users: semicolon separated,
// UTF-8 BOM so Excel detects the encoding, comma decimal separators.

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteDetailCSV writes one invoice's line items to path.
func WriteDetailCSV(path string, items []entity.LineItem) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create detail csv: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}
	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(constants.DetailHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, it := range items {
		if err := w.Write(detailRecord(it)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush detail csv: %w", err)
	}
	return f.Close()
}

func detailRecord(it entity.LineItem) []string {
	qty := it.RawQuantity
	if it.QuantityOK {
		qty = commaDecimal(it.Quantity.String())
	}
	return []string{
		strconv.Itoa(it.PageNumber),
		it.InvoiceNumber,
		it.ItemCode,
		it.Description,
		it.Country,
		qty,
		commaDecimal(it.UnitPrice.String()),
		commaDecimal(it.TotalPrice.String()),
		it.Provisional.String(),
		it.FinalNet.String(),
		it.FinalGross.String(),
		it.TariffCode,
		it.TariffDescription,
	}
}

// DetailRow is one parsed line of a detail CSV, ready for aggregation.
// Weight cells keep their raw text alongside the parsed value because
// sentinel tags must survive the round trip.
type DetailRow struct {
	PageNumber    int
	InvoiceNumber string
	ItemCode      string
	Description   string
	Country       string

	Quantity   decimal.Decimal
	TotalPrice decimal.Decimal

	NetKg   float64
	NetOK   bool
	GrossKg float64
	GrossOK bool

	TariffCode        string
	TariffDescription string

	PageFailed bool
}

// ReadDetailCSV parses a detail file written by WriteDetailCSV. Malformed
// rows are skipped with a warning so one bad line cannot block a report.
func ReadDetailCSV(path string, logger *slog.Logger) ([]DetailRow, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open detail csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(stripBOM(f))
	r.Comma = ';'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read detail header: %w", err)
	}
	if len(header) < len(constants.DetailHeaders) || strings.TrimSpace(header[0]) != constants.DetailHeaders[0] {
		return nil, fmt.Errorf("%s is not a detail csv", path)
	}

	var rows []DetailRow
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("report.detail.row_skipped", "path", path, "line", line, "reason", err.Error())
			continue
		}
		if len(rec) < len(constants.DetailHeaders) {
			logger.Warn("report.detail.row_skipped", "path", path, "line", line, "reason", "too few columns")
			continue
		}
		row := DetailRow{
			InvoiceNumber:     strings.TrimSpace(rec[1]),
			ItemCode:          strings.TrimSpace(rec[2]),
			Description:       strings.TrimSpace(rec[3]),
			Country:           strings.TrimSpace(rec[4]),
			TariffCode:        strings.TrimSpace(rec[11]),
			TariffDescription: strings.TrimSpace(rec[12]),
		}
		row.PageNumber, _ = strconv.Atoi(strings.TrimSpace(rec[0]))
		row.PageFailed = strings.HasPrefix(row.ItemCode, constants.PageFailedPrefix)
		row.Quantity = parseDecimalCell(rec[5])
		row.TotalPrice = parseDecimalCell(rec[7])
		row.NetKg, row.NetOK = entity.ParseWeightCell(rec[9])
		row.GrossKg, row.GrossOK = entity.ParseWeightCell(rec[10])
		rows = append(rows, row)
	}
	return rows, nil
}

func parseDecimalCell(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func commaDecimal(s string) string {
	return strings.Replace(s, ".", ",", 1)
}

type bomReader struct {
	r       io.Reader
	skipped bool
}

func stripBOM(r io.Reader) io.Reader { return &bomReader{r: r} }

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.skipped {
		b.skipped = true
		var bom [3]byte
		n, err := io.ReadFull(b.r, bom[:])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			copy(p, bom[:n])
			return n, io.EOF
		}
		if err != nil {
			return 0, err
		}
		if bom != [3]byte{0xEF, 0xBB, 0xBF} {
			b.r = io.MultiReader(strings.NewReader(string(bom[:])), b.r)
		}
	}
	return b.r.Read(p)
}
