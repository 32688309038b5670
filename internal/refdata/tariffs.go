package refdata

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"intrastat-assistant/constants"
)

// TariffTable holds the customs tariff codes the classifier may assign,
// together with their human descriptions.
type TariffTable struct {
	descriptions map[string]string
	codes        []string
}

// Description returns the description for a normalized tariff code.
func (t *TariffTable) Description(code string) (string, bool) {
	d, ok := t.descriptions[NormalizeTariffCode(code)]
	return d, ok
}

// Contains reports whether the code is part of the reference table.
func (t *TariffTable) Contains(code string) bool {
	_, ok := t.descriptions[NormalizeTariffCode(code)]
	return ok
}

// Codes returns all tariff codes in sorted order.
func (t *TariffTable) Codes() []string { return t.codes }

// Len reports the number of tariff codes loaded.
func (t *TariffTable) Len() int { return len(t.descriptions) }

// NormalizeTariffCode strips internal spaces so that "8531 10 30" and
// "85311030" compare equal.
func NormalizeTariffCode(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), " ", "")
}

// LoadTariffTable reads the tariff code reference CSV. Same format rules as
// the weight table: semicolon separated, optional BOM, bad rows skipped with
// a warning.
func LoadTariffTable(path string, logger *slog.Logger) (*TariffTable, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tariff table: %w", err)
	}
	defer f.Close()

	r := newRefReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read tariff table header: %w", err)
	}
	if err := checkHeader(header, constants.TariffTableHeader); err != nil {
		return nil, fmt.Errorf("tariff table %s: %w", path, err)
	}

	table := &TariffTable{descriptions: make(map[string]string)}
	warnings := 0
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			warnings = warnRow(logger, "refdata.tariffs.row_skipped", warnings, line, err.Error())
			continue
		}
		code := NormalizeTariffCode(rec[0])
		if code == "" {
			continue
		}
		if !allDigits(code) {
			warnings = warnRow(logger, "refdata.tariffs.row_skipped", warnings, line, "non-numeric code "+code)
			continue
		}
		desc := ""
		if len(rec) > 1 {
			desc = strings.TrimSpace(rec[1])
		}
		table.descriptions[code] = desc
	}
	table.codes = make([]string, 0, len(table.descriptions))
	for code := range table.descriptions {
		table.codes = append(table.codes, code)
	}
	sort.Strings(table.codes)
	logger.Info("refdata.tariffs.loaded", "path", path, "codes", table.Len())
	return table, nil
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
