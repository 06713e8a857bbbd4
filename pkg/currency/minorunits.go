// Package currency converts between decimal amounts and the processor's
// minor-unit integers. All order/webhook amount comparisons in this service
// happen on the minor-unit integers, never on floats.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

var threeDecimalCurrencies = map[string]struct{}{
	"BHD": {}, "LYD": {}, "JOD": {}, "IQD": {}, "KWD": {}, "OMR": {}, "TND": {},
}

var zeroDecimalCurrencies = map[string]struct{}{
	"BYR": {}, "XOF": {}, "BIF": {}, "XAF": {}, "KMF": {}, "DJF": {},
	"XPF": {}, "GNF": {}, "JPY": {}, "KRW": {}, "PYG": {}, "RWF": {},
	"VUV": {}, "VND": {},
}

// Exponent returns the number of minor-unit digits for a currency code.
func Exponent(code string) int32 {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if _, ok := threeDecimalCurrencies[upper]; ok {
		return 3
	}
	if _, ok := zeroDecimalCurrencies[upper]; ok {
		return 0
	}
	return 2
}

// ToMinorUnits converts a decimal amount into the currency's minor units,
// rounding half away from zero the way the processor does.
func ToMinorUnits(amount decimal.Decimal, code string) int64 {
	return amount.Shift(Exponent(code)).Round(0).IntPart()
}

// FromMinorUnits converts a minor-unit integer back into a decimal amount.
func FromMinorUnits(minor int64, code string) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-Exponent(code))
}
