package pricing

import "github.com/docelucro/backend-doce/internal/money"

// Entry is a draft cart line: a product reference plus a quantity.
type Entry struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// Product is the slice of the catalog the engine needs.
type Product struct {
	ID    string
	Name  string
	Price float64
	Cost  float64
}

// LineItem is a cart entry resolved against the catalog at a point in
// time. Sales and orders keep denormalized copies so later catalog
// edits do not rewrite history.
type LineItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	UnitCost  float64 `json:"unitCost"`
}

// Totals aggregates the derived amounts for a cart.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	TotalCost  float64 `json:"totalCusto"`
	Fee        float64 `json:"taxa"`
	FinalTotal float64 `json:"totalFinal"`
	Profit     float64 `json:"lucro"`
}

// CashBreakdown describes the cash-payment delta for a sale.
type CashBreakdown struct {
	Shortfall float64 `json:"falta"`
	Change    float64 `json:"troco"`
}

// ResolveLineItems maps cart entries to line items, preserving entry
// order. Entries with no quantity or referencing a product no longer
// in the catalog are dropped.
func ResolveLineItems(entries []Entry, catalog []Product) []LineItem {
	items := make([]LineItem, 0, len(entries))
	for _, e := range entries {
		if e.Qty <= 0 {
			continue
		}
		p, ok := findProduct(catalog, e.ProductID)
		if !ok {
			continue
		}
		items = append(items, LineItem{
			ID:        p.ID,
			Name:      p.Name,
			Qty:       e.Qty,
			UnitPrice: money.ToMoney(p.Price),
			UnitCost:  money.ToMoney(p.Cost),
		})
	}
	return items
}

// ComputeTotals derives the payable amount and realized profit for a
// cart under the default card rate.
func ComputeTotals(entries []Entry, catalog []Product, method Method, discount, surcharge float64) Totals {
	return ComputeTotalsBps(entries, catalog, method, discount, surcharge, DefaultCardFeeBps)
}

// ComputeTotalsBps is ComputeTotals with an explicit card rate. The
// discount and surcharge are applied additively and are not validated
// here; a discount above the subtotal legitimately drives the final
// total negative.
func ComputeTotalsBps(entries []Entry, catalog []Product, method Method, discount, surcharge float64, feeBps int) Totals {
	items := ResolveLineItems(entries, catalog)
	return TotalsFromItems(items, method, discount, surcharge, feeBps)
}

// TotalsFromItems computes totals over already-resolved line items.
func TotalsFromItems(items []LineItem, method Method, discount, surcharge float64, feeBps int) Totals {
	var subtotal, totalCost float64
	for _, it := range items {
		subtotal += float64(it.Qty) * it.UnitPrice
		totalCost += float64(it.Qty) * it.UnitCost
	}
	subtotal = money.Round2(subtotal)
	totalCost = money.Round2(totalCost)
	fee := CardFeeBps(subtotal, method, feeBps)
	final := money.Round2(subtotal + money.Finite(surcharge) - money.Finite(discount) + fee)
	return Totals{
		Subtotal:   subtotal,
		TotalCost:  totalCost,
		Fee:        fee,
		FinalTotal: final,
		Profit:     Profit(final, totalCost, fee),
	}
}

// ChangeAndShortfall computes what is still owed and what must be
// returned on a cash sale. Non-cash methods always yield a zero pair.
func ChangeAndShortfall(finalTotal, received float64, method Method) CashBreakdown {
	if method != MethodDinheiro {
		return CashBreakdown{}
	}
	f := money.Finite(finalTotal)
	r := money.Finite(received)
	var out CashBreakdown
	if f > r {
		out.Shortfall = money.Round2(f - r)
	}
	if r > f {
		out.Change = money.Round2(r - f)
	}
	return out
}

func findProduct(catalog []Product, id string) (Product, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
