package realloc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrastat-assistant/constants"
	"intrastat-assistant/internal/entity"
	"intrastat-assistant/internal/refdata"
)

func testWeightTable(t *testing.T) *refdata.WeightTable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "product_weight.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"Registrační číslo;JV Váha komplet SK\nCZ-1263.1;0,450\nJA-196J;1,2\n"), 0o644))
	table, err := refdata.LoadWeightTable(path, nil)
	require.NoError(t, err)
	return table
}

func TestFillProvisionalWeights(t *testing.T) {
	badQty := product("JA-196J", "1", 0)
	badQty.QuantityOK = false
	badQty.Quantity = decimal.Zero

	codeless := product("", "2", 0)
	codeless.ItemCode = "Montážna sada"
	codeless.Description = "Montážna sada"

	unknownBadQty := product("XX-500", "1", 0)
	unknownBadQty.QuantityOK = false

	items := []entity.LineItem{
		product("CZ-1263.1", "4", 0),
		product("XX-404", "1", 0),
		badQty,
		codeless,
		unknownBadQty,
		{Description: "Doprava", IsProduct: false},
		entity.FailedPageItem(2, "FV-1", "timeout"),
	}
	FillProvisionalWeights(items, testWeightTable(t))

	require.True(t, items[0].Provisional.Valid())
	assert.InDelta(t, 1.8, items[0].Provisional.Kg, 1e-9)

	assert.Equal(t, constants.TagNotFound, items[1].Provisional.Tag)
	assert.Equal(t, constants.TagQuantityError, items[2].Provisional.Tag)
	// A product row without a code skips the catalog lookup entirely.
	assert.Equal(t, constants.TagNotApplicable, items[3].Provisional.Tag)
	// An unknown code wins over a bad quantity.
	assert.Equal(t, constants.TagNotFound, items[4].Provisional.Tag)
	assert.Equal(t, constants.TagNotApplicable, items[5].Provisional.Tag)
	assert.Equal(t, constants.TagNotApplicable, items[6].Provisional.Tag)
}
