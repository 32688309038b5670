package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrastat-assistant/constants"
)

func TestWeightString(t *testing.T) {
	assert.Equal(t, "1,234", Kilograms(1.2341).String())
	assert.Equal(t, "0,000", Kilograms(0).String())
	assert.Equal(t, "10,500", Kilograms(10.5).String())
	assert.Equal(t, "NOT_FOUND", Tagged(constants.TagNotFound).String())
	assert.Equal(t, "", Weight{}.String())
}

func TestWeightValidity(t *testing.T) {
	assert.True(t, Kilograms(1).Valid())
	assert.True(t, Kilograms(0).Valid())
	assert.False(t, Tagged(constants.TagNotFound).Valid())
	assert.False(t, Weight{}.Valid())
	assert.True(t, Weight{}.IsZeroValue())
	assert.False(t, Kilograms(0).IsZeroValue())
}

func TestParseWeightCell(t *testing.T) {
	kg, ok := ParseWeightCell("1,234")
	require.True(t, ok)
	assert.InDelta(t, 1.234, kg, 1e-9)

	kg, ok = ParseWeightCell("2.5")
	require.True(t, ok)
	assert.InDelta(t, 2.5, kg, 1e-9)

	for _, cell := range []string{"", "NOT_FOUND", "ERR_AI_KEY_MISSING", "N/A", "PAGE ANALYSIS FAILED: timeout", "abc"} {
		_, ok := ParseWeightCell(cell)
		assert.False(t, ok, "cell %q", cell)
	}
}

func TestParseQuantity(t *testing.T) {
	d, err := ParseQuantity("2,5")
	require.NoError(t, err)
	assert.Equal(t, "2.5", d.String())

	d, err = ParseQuantity(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, "3", d.String())

	for _, bad := range []string{"", "-1", "ks"} {
		_, err := ParseQuantity(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestFailedPageItem(t *testing.T) {
	it := FailedPageItem(3, "FV-1", "timeout")
	assert.True(t, it.PageFailed)
	assert.False(t, it.IsProduct)
	assert.Equal(t, 3, it.PageNumber)
	assert.Equal(t, "FV-1", it.InvoiceNumber)
	assert.Equal(t, constants.PageFailedPrefix+": timeout", it.ItemCode)
}

func TestReallocationTargetValidate(t *testing.T) {
	assert.NoError(t, ReallocationTarget{NetKg: 5, GrossKg: 5.5}.Validate())
	assert.NoError(t, ReallocationTarget{NetKg: 0, GrossKg: 0}.Validate())
	assert.Error(t, ReallocationTarget{NetKg: -1, GrossKg: 2}.Validate())
	assert.Error(t, ReallocationTarget{NetKg: 5, GrossKg: 4}.Validate())
}
