// Package report derives the dashboard numbers from the document.
// Everything here is pure; caching lives in the service.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/docelucro/backend-doce/internal/money"
	"github.com/docelucro/backend-doce/internal/pricing"
	"github.com/docelucro/backend-doce/internal/state"
)

// Totals aggregates sales over a period. Lucro is recomputed from the
// aggregate figures, not summed per sale, so the period identity
// lucro = faturamento - custos - taxas always holds.
type Totals struct {
	Faturamento float64 `json:"faturamento"`
	Custos      float64 `json:"custos"`
	Taxas       float64 `json:"taxas"`
	Lucro       float64 `json:"lucro"`
	Vendas      int     `json:"vendas"`
}

// CashSummary partitions one day of the cash ledger by channel.
type CashSummary struct {
	Dinheiro      float64 `json:"dinheiro"`
	Pix           float64 `json:"pix"`
	Cartao        float64 `json:"cartao"`
	EntradasTotal float64 `json:"entradasTotal"`
	Saidas        float64 `json:"saidas"`
	Saldo         float64 `json:"saldo"`
}

// TopProduct ranks a product by revenue over a period.
type TopProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"nome"`
	Qty       int     `json:"qtd"`
	Revenue   float64 `json:"faturamento"`
	Profit    float64 `json:"lucro"`
}

// SummarizeSales folds the sales accepted by match into period totals.
func SummarizeSales(doc *state.Document, match func(state.Sale) bool) Totals {
	var revenue, costs, fees float64
	count := 0
	for _, sale := range doc.Sales {
		if !match(sale) {
			continue
		}
		revenue += sale.Total
		costs += sale.TotalCost
		fees += sale.CardFee
		count++
	}
	revenue = money.Round2(revenue)
	costs = money.Round2(costs)
	fees = money.Round2(fees)
	return Totals{
		Faturamento: revenue,
		Custos:      costs,
		Taxas:       fees,
		Lucro:       pricing.Profit(revenue, costs, fees),
		Vendas:      count,
	}
}

// Day summarizes the sales of one day key.
func Day(doc *state.Document, dayKey string) Totals {
	return SummarizeSales(doc, func(s state.Sale) bool { return s.Date == dayKey })
}

// Month summarizes the sales of one month key (YYYY-MM).
func Month(doc *state.Document, monthKey string) Totals {
	return SummarizeSales(doc, func(s state.Sale) bool {
		return strings.HasPrefix(s.Date, monthKey+"-")
	})
}

// Year summarizes the sales of one year key (YYYY).
func Year(doc *state.Document, yearKey string) Totals {
	return SummarizeSales(doc, func(s state.Sale) bool {
		return strings.HasPrefix(s.Date, yearKey+"-")
	})
}

// Last7Days summarizes the rolling window ending at now, inclusive.
func Last7Days(doc *state.Document, now time.Time) Totals {
	window := make(map[string]struct{}, 7)
	for i := 0; i < 7; i++ {
		window[state.DayKey(now.AddDate(0, 0, -i))] = struct{}{}
	}
	return SummarizeSales(doc, func(s state.Sale) bool {
		_, ok := window[s.Date]
		return ok
	})
}

// CashSummaryForDate partitions the ledger moves of one day.
func CashSummaryForDate(doc *state.Document, dayKey string) CashSummary {
	var out CashSummary
	for _, move := range doc.CashMoves {
		if move.Date != dayKey {
			continue
		}
		switch move.Type {
		case state.MoveDinheiro:
			out.Dinheiro += move.Value
		case state.MovePix:
			out.Pix += move.Value
		case state.MoveCartao:
			out.Cartao += move.Value
		case state.MoveSaida:
			out.Saidas += move.Value
		}
	}
	out.Dinheiro = money.Round2(out.Dinheiro)
	out.Pix = money.Round2(out.Pix)
	out.Cartao = money.Round2(out.Cartao)
	out.Saidas = money.Round2(out.Saidas)
	out.EntradasTotal = money.Round2(out.Dinheiro + out.Pix + out.Cartao)
	out.Saldo = money.Sub(out.EntradasTotal, out.Saidas)
	return out
}

// OpenOrdersReceivable sums the outstanding balance of open orders.
func OpenOrdersReceivable(doc *state.Document) float64 {
	var total float64
	for _, order := range doc.Orders {
		if order.Status != state.OrderOpen {
			continue
		}
		total += order.Balance()
	}
	return money.Round2(total)
}

// TopProducts ranks products by revenue over the sales accepted by
// match. Ties break by name to keep the order stable.
func TopProducts(doc *state.Document, match func(state.Sale) bool, limit int) []TopProduct {
	byID := map[string]*TopProduct{}
	order := []string{}
	for _, sale := range doc.Sales {
		if !match(sale) {
			continue
		}
		for _, item := range sale.Items {
			entry, ok := byID[item.ID]
			if !ok {
				entry = &TopProduct{ProductID: item.ID, Name: item.Name}
				byID[item.ID] = entry
				order = append(order, item.ID)
			}
			entry.Qty += item.Qty
			entry.Revenue += item.UnitPrice * float64(item.Qty)
			entry.Profit += (item.UnitPrice - item.UnitCost) * float64(item.Qty)
		}
	}
	out := make([]TopProduct, 0, len(order))
	for _, id := range order {
		entry := byID[id]
		entry.Revenue = money.Round2(entry.Revenue)
		entry.Profit = money.Round2(entry.Profit)
		out = append(out, *entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
