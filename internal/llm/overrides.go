package llm

import "intrastat-assistant/internal/refdata"

// Manual corrections for products the model keeps misclassifying. Overrides
// win over any model answer.

var tariffOverrides = map[string]string{
	"CZ-1263.1": "85311030",
	"JA-196J":   "85311030",
	"JA-165A":   "85311030",
	"JA-192Y":   "85311030",
	"JA-194Y":   "85311030",
}

var countryOverrides = map[string]string{
	"CZ-1263.1": "CZ",
	"JA-196J":   "JP",
	"JA-165A":   "JP",
	"JA-192Y":   "JP",
	"JA-194Y":   "JP",
}

// TariffOverride returns the manually pinned tariff code for an item code.
func TariffOverride(itemCode string) (string, bool) {
	code, ok := tariffOverrides[itemCode]
	return code, ok
}

// CountryOverride returns the manually pinned country of origin for an item
// code.
func CountryOverride(itemCode string) (string, bool) {
	c, ok := countryOverrides[itemCode]
	return c, ok
}

// OverriddenTariffValid reports whether every pinned tariff code exists in
// the loaded reference table. Called at startup to catch stale overrides.
func OverriddenTariffValid(table *refdata.TariffTable) bool {
	for _, code := range tariffOverrides {
		if !table.Contains(code) {
			return false
		}
	}
	return true
}
