package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrastat-assistant/constants"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func findRow(t *testing.T, rows []SummaryRow, tariff, country string) SummaryRow {
	t.Helper()
	for _, r := range rows {
		if r.TariffCode == tariff && r.Country == country {
			return r
		}
	}
	t.Fatalf("no summary row for %s/%s", tariff, country)
	return SummaryRow{}
}

func TestAggregateGroupsByTariffAndCountry(t *testing.T) {
	rows := []DetailRow{
		{ItemCode: "CZ-1", TariffCode: "85311030", Country: "CZ", Quantity: dec("2"), TotalPrice: dec("100"), NetKg: 1.5, NetOK: true, GrossKg: 1.8, GrossOK: true},
		{ItemCode: "CZ-2", TariffCode: "85311030", Country: "CZ", Quantity: dec("1"), TotalPrice: dec("50"), NetKg: 0.5, NetOK: true, GrossKg: 0.7, GrossOK: true},
		{ItemCode: "JA-1", TariffCode: "85311030", Country: "JP", Quantity: dec("3"), TotalPrice: dec("90"), NetKg: 3, NetOK: true, GrossKg: 3.3, GrossOK: true},
	}
	summary := Aggregate(rows)
	require.Len(t, summary, 3) // two groups plus total

	cz := findRow(t, summary, "85311030", "CZ")
	assert.InDelta(t, 2.0, cz.NetKg, 1e-9)
	assert.InDelta(t, 2.5, cz.GrossKg, 1e-9)
	assert.True(t, cz.Quantity.Equal(dec("3.0")))
	assert.True(t, cz.Price.Equal(dec("150.00")))

	total := summary[len(summary)-1]
	assert.Equal(t, constants.GrandTotalKey, total.TariffCode)
	assert.Equal(t, "", total.Country)
	assert.InDelta(t, 5.0, total.NetKg, 1e-9)
	assert.True(t, total.Quantity.Equal(dec("6.0")))
	assert.True(t, total.Price.Equal(dec("240.00")))
}

func TestAggregateDiscountAndHandlingFee(t *testing.T) {
	rows := []DetailRow{
		{ItemCode: "CZ-1", TariffCode: "85311030", Country: "CZ", Quantity: dec("1"), TotalPrice: dec("200"), NetKg: 1, NetOK: true, GrossKg: 1.1, GrossOK: true},
		{Description: "Sleva zákazníkovi 5%", TariffCode: "", Country: "", Quantity: dec("1"), TotalPrice: dec("-10")},
		{Description: "Manipulační poplatek", TariffCode: "", Country: "", Quantity: dec("1"), TotalPrice: dec("15")},
	}
	summary := Aggregate(rows)

	discount := findRow(t, summary, constants.TariffDiscount, constants.TariffDiscount)
	assert.True(t, discount.Quantity.IsZero())
	assert.True(t, discount.Price.Equal(dec("-10.00")))

	// The handling fee contributes nothing, so its undetermined group is
	// dropped entirely.
	for _, r := range summary {
		assert.NotEqual(t, constants.TariffUndetermined, r.TariffCode)
	}

	total := summary[len(summary)-1]
	assert.True(t, total.Price.Equal(dec("190.00")))
	assert.True(t, total.Quantity.Equal(dec("1.0")))
}

func TestAggregateSentinelWeightsCountAsZero(t *testing.T) {
	rows := []DetailRow{
		{ItemCode: "CZ-1", TariffCode: "85311030", Country: "CZ", Quantity: dec("1"), TotalPrice: dec("10"), NetKg: 2, NetOK: true, GrossKg: 2.2, GrossOK: true},
		{ItemCode: "XX-1", TariffCode: "85311030", Country: "CZ", Quantity: dec("1"), TotalPrice: dec("20"), NetOK: false, GrossOK: false},
	}
	summary := Aggregate(rows)

	cz := findRow(t, summary, "85311030", "CZ")
	assert.InDelta(t, 2.0, cz.NetKg, 1e-9)
	assert.True(t, cz.Price.Equal(dec("30.00")))
}

func TestAggregateDefaultsAndDrops(t *testing.T) {
	rows := []DetailRow{
		{ItemCode: "A", TariffCode: "", Country: "", Quantity: dec("2"), TotalPrice: dec("10"), NetKg: 1, NetOK: true, GrossKg: 1, GrossOK: true},
		{ItemCode: "B", TariffCode: constants.TariffUndetermined, Country: "DE", Quantity: decimal.Zero, TotalPrice: decimal.Zero},
		{Description: constants.PageFailedPrefix + ": timeout", PageFailed: true, Quantity: dec("99"), TotalPrice: dec("999")},
	}
	summary := Aggregate(rows)
	require.Len(t, summary, 2)

	// Row A lands in the undetermined/unspecified group and survives because
	// its sums are not all zero. Row B's group is dropped, the failed page
	// row is ignored.
	got := findRow(t, summary, constants.TariffUndetermined, constants.CountryUnspecified)
	assert.True(t, got.Quantity.Equal(dec("2.0")))

	total := summary[len(summary)-1]
	assert.True(t, total.Price.Equal(dec("10.00")))
}

func TestAggregateRoundsForDisplay(t *testing.T) {
	rows := []DetailRow{
		{ItemCode: "A", TariffCode: "85311030", Country: "CZ", Quantity: dec("1.25"), TotalPrice: dec("10.005"), NetKg: 1.004, NetOK: true, GrossKg: 1.006, GrossOK: true},
	}
	summary := Aggregate(rows)

	row := findRow(t, summary, "85311030", "CZ")
	assert.InDelta(t, 1.0, row.NetKg, 1e-9)
	assert.InDelta(t, 1.01, row.GrossKg, 1e-9)
	assert.Equal(t, "1.3", row.Quantity.String())
}
