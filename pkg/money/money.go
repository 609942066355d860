package money

import "github.com/shopspring/decimal"

// Places is the number of decimal places amounts are presented with.
const Places = 2

var Zero = decimal.Zero

// FromFloat converts an upstream float price into a decimal.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// Round rounds half away from zero to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Float returns d rounded for presentation.
func Float(d decimal.Decimal) float64 {
	f, _ := Round(d).Float64()
	return f
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
