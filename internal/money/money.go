// Package money provides the numeric primitives the ledger is built on.
// Amounts are plain float64 reais in the persisted document; every
// arithmetic step that can introduce drift goes through decimal so that
// cent rounding is exact.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Finite coerces v to a usable number. NaN and infinities become 0.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ToMoney coerces v to a finite non-negative amount. Malformed input
// degrades to 0 rather than propagating.
func ToMoney(v float64) float64 {
	v = Finite(v)
	if v < 0 {
		return 0
	}
	return v
}

// Round2 rounds v to the nearest cent, half up.
func Round2(v float64) float64 {
	return dec(v).Round(2).InexactFloat64()
}

// Bps returns the given share of amount expressed in basis points,
// rounded to cents. Bps(50, 299) == 1.50.
func Bps(amount float64, bps int) float64 {
	if bps <= 0 {
		return 0
	}
	share := dec(ToMoney(amount)).
		Mul(decimal.NewFromInt(int64(bps))).
		Div(decimal.NewFromInt(10000))
	return share.Round(2).InexactFloat64()
}

// Sub computes a − b − c... with exact decimal arithmetic, rounded to
// cents. The result may be negative.
func Sub(a float64, subtrahends ...float64) float64 {
	d := dec(a)
	for _, s := range subtrahends {
		d = d.Sub(dec(s))
	}
	return d.Round(2).InexactFloat64()
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(Finite(v))
}
