package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"intrastat-assistant/constants"
)

const maxRowWarnings = 10

// WeightTable maps a product registration code to its unit net weight in kg.
type WeightTable struct {
	weights map[string]float64
}

// UnitWeight returns the unit net weight for a product code.
func (t *WeightTable) UnitWeight(code string) (float64, bool) {
	kg, ok := t.weights[strings.TrimSpace(code)]
	return kg, ok
}

// Len reports the number of products with a known weight.
func (t *WeightTable) Len() int { return len(t.weights) }

// LoadWeightTable reads the product weight reference CSV. The file is
// semicolon separated, may start with a UTF-8 BOM, and carries weights with a
// comma decimal separator. Rows that cannot be parsed are skipped with a
// warning; only a missing file or a wrong header aborts the load.
func LoadWeightTable(path string, logger *slog.Logger) (*WeightTable, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weight table: %w", err)
	}
	defer f.Close()

	r := newRefReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read weight table header: %w", err)
	}
	if err := checkHeader(header, constants.WeightTableHeader); err != nil {
		return nil, fmt.Errorf("weight table %s: %w", path, err)
	}

	table := &WeightTable{weights: make(map[string]float64)}
	warnings := 0
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			warnings = warnRow(logger, "refdata.weights.row_skipped", warnings, line, err.Error())
			continue
		}
		if len(rec) < 2 {
			warnings = warnRow(logger, "refdata.weights.row_skipped", warnings, line, "too few columns")
			continue
		}
		code := strings.TrimSpace(rec[0])
		if code == "" {
			continue
		}
		kg, err := parseDecimalComma(rec[1])
		if err != nil || kg < 0 {
			warnings = warnRow(logger, "refdata.weights.row_skipped", warnings, line, "bad weight value "+strconv.Quote(rec[1]))
			continue
		}
		table.weights[code] = kg
	}
	logger.Info("refdata.weights.loaded", "path", path, "products", table.Len())
	return table, nil
}

func newRefReader(f io.Reader) *csv.Reader {
	r := csv.NewReader(stripBOM(f))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	return r
}

func checkHeader(got, want []string) error {
	if len(got) < len(want) {
		return fmt.Errorf("unexpected header %v, want %v", got, want)
	}
	for i, col := range want {
		if strings.TrimSpace(got[i]) != col {
			return fmt.Errorf("unexpected header column %q, want %q", got[i], col)
		}
	}
	return nil
}

func warnRow(logger *slog.Logger, event string, warnings, line int, reason string) int {
	warnings++
	if warnings <= maxRowWarnings {
		logger.Warn(event, "line", line, "reason", reason)
	}
	if warnings == maxRowWarnings+1 {
		logger.Warn(event, "reason", "further row warnings suppressed")
	}
	return warnings
}

// parseDecimalComma parses a number that uses a comma as the decimal
// separator, tolerating a plain dot as well.
func parseDecimalComma(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(s, 64)
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
