package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"intrastat-assistant/constants"
	"intrastat-assistant/internal/classify"
)

// SummaryRow is one line of the declaration summary: sums for a (tariff
// code, country of origin) pair, already rounded for display.
type SummaryRow struct {
	TariffCode string
	Country    string
	GrossKg    float64
	NetKg      float64
	Quantity   decimal.Decimal
	Price      decimal.Decimal
}

type groupKey struct {
	tariff  string
	country string
}

type groupSums struct {
	gross    float64
	net      float64
	quantity decimal.Decimal
	price    decimal.Decimal
}

// Aggregate groups detail rows by tariff code and country of origin and
// appends a grand total row under the TOTAL key.
//
// Special rows bend the sums: customer discounts move to the DISCOUNT key
// with zero quantity but their (negative) price kept, handling fees zero out
// both quantity and price. Weight cells carrying sentinel tags count as zero.
// Undetermined groups whose sums are all zero are dropped entirely, and the
// grand total is computed from the unrounded sums before display rounding.
func Aggregate(rows []DetailRow) []SummaryRow {
	groups := make(map[groupKey]*groupSums)

	for _, row := range rows {
		if row.PageFailed {
			continue
		}
		key := groupKey{tariff: row.TariffCode, country: row.Country}
		if key.tariff == "" {
			key.tariff = constants.TariffUndetermined
		}
		if key.country == "" {
			key.country = constants.CountryUnspecified
		}
		qty := row.Quantity
		price := row.TotalPrice
		switch {
		case classify.IsCustomerDiscount(row.Description):
			key = groupKey{tariff: constants.TariffDiscount, country: constants.TariffDiscount}
			qty = decimal.Zero
		case classify.IsHandlingFee(row.Description):
			qty = decimal.Zero
			price = decimal.Zero
		}

		g := groups[key]
		if g == nil {
			g = &groupSums{}
			groups[key] = g
		}
		if row.GrossOK {
			g.gross += row.GrossKg
		}
		if row.NetOK {
			g.net += row.NetKg
		}
		g.quantity = g.quantity.Add(qty)
		g.price = g.price.Add(price)
	}

	keys := make([]groupKey, 0, len(groups))
	for key, g := range groups {
		if key.tariff == constants.TariffUndetermined && allZero(g) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		// DISCOUNT sorts after real tariff codes, just before the total.
		di, dj := keys[i].tariff == constants.TariffDiscount, keys[j].tariff == constants.TariffDiscount
		if di != dj {
			return dj
		}
		if keys[i].tariff != keys[j].tariff {
			return keys[i].tariff < keys[j].tariff
		}
		return keys[i].country < keys[j].country
	})

	var total groupSums
	out := make([]SummaryRow, 0, len(keys)+1)
	for _, key := range keys {
		g := groups[key]
		total.gross += g.gross
		total.net += g.net
		total.quantity = total.quantity.Add(g.quantity)
		total.price = total.price.Add(g.price)
		out = append(out, roundedRow(key.tariff, key.country, g))
	}
	out = append(out, roundedRow(constants.GrandTotalKey, "", &total))
	return out
}

func allZero(g *groupSums) bool {
	return g.gross == 0 && g.net == 0 && g.quantity.IsZero() && g.price.IsZero()
}

func roundedRow(tariff, country string, g *groupSums) SummaryRow {
	return SummaryRow{
		TariffCode: tariff,
		Country:    country,
		GrossKg:    roundTo(g.gross, 2),
		NetKg:      roundTo(g.net, 2),
		Quantity:   g.quantity.Round(1),
		Price:      g.price.Round(2),
	}
}

func roundTo(v float64, places int) float64 {
	d := decimal.NewFromFloat(v)
	f, _ := d.Round(int32(places)).Float64()
	return f
}
