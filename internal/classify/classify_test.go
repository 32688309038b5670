package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsProduct(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		description string
		want        bool
	}{
		{"plain product", "CZ-1263.1", "Smoke detector", true},
		{"product code overrides keyword noise", "JA-196J", "Detector incl. shipping bracket", true},
		{"discount line", "", "Sleva zákazníkovi 5%", false},
		{"slovak discount", "", "Zľava pre zákazníka", false},
		{"shipping czech", "", "Doprava a balné", false},
		{"shipping slovak", "", "Preprava tovaru", false},
		{"handling fee", "", "Manipulační poplatek", false},
		{"english fee", "FEE01", "Admin fee", false},
		{"english shipping", "", "Shipping costs", false},
		{"unknown code still product", "XY123", "Mounting plate", true},
		{"empty line", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsProduct(tt.code, tt.description))
		})
	}
}

func TestIsCustomerDiscount(t *testing.T) {
	assert.True(t, IsCustomerDiscount("Sleva zákazníkovi 5%"))
	assert.True(t, IsCustomerDiscount("SLEVA ZÁKAZNÍKOVI"))
	assert.False(t, IsCustomerDiscount("Doprava"))
}

func TestIsHandlingFee(t *testing.T) {
	assert.True(t, IsHandlingFee("Manipulační poplatek"))
	assert.False(t, IsHandlingFee("Sleva zákazníkovi"))
}
