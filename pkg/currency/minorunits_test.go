package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     int64
	}{
		{name: "two decimal", amount: "10.00", currency: "USD", want: 1000},
		{name: "two decimal rounds", amount: "10.005", currency: "EUR", want: 1001},
		{name: "three decimal", amount: "1.234", currency: "KWD", want: 1234},
		{name: "zero decimal", amount: "1200", currency: "JPY", want: 1200},
		{name: "lowercase code", amount: "6.00", currency: "gbp", want: 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ToMinorUnits(amount, tt.currency))
		})
	}
}

func TestFromMinorUnitsRoundTrips(t *testing.T) {
	assert.Equal(t, "10.5", FromMinorUnits(1050, "USD").String())
	assert.Equal(t, "1.234", FromMinorUnits(1234, "KWD").String())
	assert.Equal(t, "1200", FromMinorUnits(1200, "JPY").String())
}

func TestExponent(t *testing.T) {
	assert.Equal(t, int32(2), Exponent("USD"))
	assert.Equal(t, int32(3), Exponent("bhd"))
	assert.Equal(t, int32(0), Exponent(" JPY "))
}
