package pricing

import "github.com/docelucro/backend-doce/internal/money"

// Method identifies a settlement channel.
type Method string

const (
	MethodPix      Method = "pix"
	MethodDinheiro Method = "dinheiro"
	MethodCartao   Method = "cartao"
)

// DefaultCardFeeBps is the flat card-processing rate in basis points.
const DefaultCardFeeBps = 299

// Valid reports whether m is a known settlement method.
func (m Method) Valid() bool {
	switch m {
	case MethodPix, MethodDinheiro, MethodCartao:
		return true
	}
	return false
}

// CardFee returns the processing fee for the amount under the default
// card rate. Pix and cash carry no fee.
func CardFee(amount float64, method Method) float64 {
	return CardFeeBps(amount, method, DefaultCardFeeBps)
}

// CardFeeBps is CardFee with an explicit rate in basis points.
func CardFeeBps(amount float64, method Method, bps int) float64 {
	if method != MethodCartao {
		return 0
	}
	return money.Bps(amount, bps)
}

// Profit returns revenue − cost − fee rounded to cents. A loss comes
// back negative, never clamped.
func Profit(revenue, cost, fee float64) float64 {
	return money.Sub(money.Finite(revenue), money.Finite(cost), money.Finite(fee))
}

// Margin returns the unit profit as a percentage of the sale price.
// A price of zero or less yields 0; cost above price yields a negative
// margin.
func Margin(price, cost float64) float64 {
	p := money.Finite(price)
	if p <= 0 {
		return 0
	}
	return ((p - money.Finite(cost)) / p) * 100
}

// ROI returns the unit profit as a percentage of the unit cost, or 0
// when there is no cost basis.
func ROI(profit, cost float64) float64 {
	c := money.Finite(cost)
	if c <= 0 {
		return 0
	}
	return (money.Finite(profit) / c) * 100
}
