// Package sales runs the counter sale: a draft cart that is quoted
// live and finalized into the ledger.
package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/docelucro/backend-doce/internal/common"
	"github.com/docelucro/backend-doce/internal/events"
	"github.com/docelucro/backend-doce/internal/money"
	"github.com/docelucro/backend-doce/internal/obs"
	"github.com/docelucro/backend-doce/internal/pricing"
	"github.com/docelucro/backend-doce/internal/state"
	"github.com/docelucro/backend-doce/internal/store"
)

// Quote is the live view of the draft cart.
type Quote struct {
	Items  []pricing.LineItem    `json:"items"`
	Totals pricing.Totals        `json:"totals"`
	Cash   pricing.CashBreakdown `json:"cash"`
	Draft  state.SaleDraft       `json:"draft"`
}

// DraftPatch carries partial updates to the draft scalars. Nil fields
// are left untouched.
type DraftPatch struct {
	Method    *pricing.Method `json:"metodo"`
	Discount  *float64        `json:"desconto"`
	Surcharge *float64        `json:"acrescimo"`
	Received  *float64        `json:"recebido"`
}

// Service coordinates the draft cart and sale finalization.
type Service struct {
	Store  *store.Store
	Bus    *events.Bus
	FeeBps int
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) feeBps() int {
	if s.FeeBps > 0 {
		return s.FeeBps
	}
	return pricing.DefaultCardFeeBps
}

// SetQty sets the cart quantity for a product. Zero or negative
// removes the entry; unknown products are rejected.
func (s *Service) SetQty(ctx context.Context, productID string, qty int) (Quote, error) {
	if s == nil || s.Store == nil {
		return Quote{}, errors.New("sales service not configured")
	}
	err := s.Store.Update(ctx, func(doc *state.Document) error {
		if qty > 0 && doc.FindProduct(productID) == nil {
			return fmt.Errorf("product %s: %w", productID, common.ErrNotFound)
		}
		for i := range doc.Draft.Cart {
			if doc.Draft.Cart[i].ProductID != productID {
				continue
			}
			if qty <= 0 {
				doc.Draft.Cart = append(doc.Draft.Cart[:i], doc.Draft.Cart[i+1:]...)
			} else {
				doc.Draft.Cart[i].Qty = qty
			}
			return nil
		}
		if qty > 0 {
			doc.Draft.Cart = append(doc.Draft.Cart, pricing.Entry{ProductID: productID, Qty: qty})
		}
		return nil
	})
	if err != nil {
		return Quote{}, err
	}
	return s.CurrentQuote(ctx)
}

// Patch updates the draft scalars.
func (s *Service) Patch(ctx context.Context, patch DraftPatch) (Quote, error) {
	if s == nil || s.Store == nil {
		return Quote{}, errors.New("sales service not configured")
	}
	err := s.Store.Update(ctx, func(doc *state.Document) error {
		if patch.Method != nil {
			if !patch.Method.Valid() {
				return fmt.Errorf("metodo %q: %w", *patch.Method, common.ErrInvalidInput)
			}
			doc.Draft.Method = *patch.Method
		}
		if patch.Discount != nil {
			doc.Draft.Discount = money.ToMoney(*patch.Discount)
		}
		if patch.Surcharge != nil {
			doc.Draft.Surcharge = money.ToMoney(*patch.Surcharge)
		}
		if patch.Received != nil {
			doc.Draft.Received = money.ToMoney(*patch.Received)
		}
		return nil
	})
	if err != nil {
		return Quote{}, err
	}
	return s.CurrentQuote(ctx)
}

// Clear drops the draft back to its defaults.
func (s *Service) Clear(ctx context.Context) error {
	if s == nil || s.Store == nil {
		return errors.New("sales service not configured")
	}
	return s.Store.Update(ctx, func(doc *state.Document) error {
		doc.Draft = state.SaleDraft{Method: pricing.MethodPix}
		return nil
	})
}

// CurrentQuote recomputes the draft totals from the live catalog.
// Entries pointing at deleted products contribute nothing.
func (s *Service) CurrentQuote(_ context.Context) (Quote, error) {
	if s == nil || s.Store == nil {
		return Quote{}, errors.New("sales service not configured")
	}
	var quote Quote
	s.Store.View(func(doc *state.Document) {
		quote = s.quoteLocked(doc)
	})
	return quote, nil
}

func (s *Service) quoteLocked(doc *state.Document) Quote {
	items := pricing.ResolveLineItems(doc.Draft.Cart, doc.CatalogView())
	totals := pricing.TotalsFromItems(items, doc.Draft.Method, doc.Draft.Discount, doc.Draft.Surcharge, s.feeBps())
	cash := pricing.ChangeAndShortfall(totals.FinalTotal, doc.Draft.Received, doc.Draft.Method)
	return Quote{Items: items, Totals: totals, Cash: cash, Draft: doc.Draft}
}

// Finalize turns the draft into a recorded sale. The sale and a
// matching inflow cash move land in the same update, then the draft
// is reset.
func (s *Service) Finalize(ctx context.Context) (state.Sale, error) {
	if s == nil || s.Store == nil {
		return state.Sale{}, errors.New("sales service not configured")
	}
	var sale state.Sale
	now := s.now()
	err := s.Store.Update(ctx, func(doc *state.Document) error {
		if !doc.Draft.Method.Valid() {
			return fmt.Errorf("metodo %q: %w", doc.Draft.Method, common.ErrInvalidInput)
		}
		quote := s.quoteLocked(doc)
		if len(quote.Items) == 0 {
			return fmt.Errorf("empty cart: %w", common.ErrInvalidInput)
		}
		if doc.Draft.Method == pricing.MethodDinheiro && quote.Cash.Shortfall > 0 {
			return fmt.Errorf("recebido below total by %.2f: %w", quote.Cash.Shortfall, common.ErrInvalidInput)
		}
		sale = state.Sale{
			ID:        state.NewID(),
			Date:      state.DayKey(now),
			CreatedAt: now,
			Method:    doc.Draft.Method,
			Items:     quote.Items,
			Discount:  doc.Draft.Discount,
			Surcharge: doc.Draft.Surcharge,
			Received:  doc.Draft.Received,
			Change:    quote.Cash.Change,
			Total:     quote.Totals.FinalTotal,
			TotalCost: quote.Totals.TotalCost,
			CardFee:   quote.Totals.Fee,
			Profit:    quote.Totals.Profit,
		}
		doc.Sales = append(doc.Sales, sale)
		doc.CashMoves = append(doc.CashMoves, state.CashMove{
			ID:        state.NewID(),
			Date:      sale.Date,
			Type:      state.MoveTypeFor(sale.Method),
			Value:     sale.Total,
			CreatedAt: now,
		})
		doc.Draft = state.SaleDraft{Method: pricing.MethodPix}
		return nil
	})
	if err != nil {
		return state.Sale{}, err
	}
	if obs.SalesTotal != nil {
		obs.SalesTotal.WithLabelValues(string(sale.Method)).Inc()
	}
	if s.Bus != nil {
		_, _ = s.Bus.Emit(ctx, events.TopicSaleRecorded, sale.ID, sale)
	}
	return sale, nil
}

// List returns recorded sales, optionally filtered by day key,
// newest first.
func (s *Service) List(_ context.Context, date string) ([]state.Sale, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("sales service not configured")
	}
	out := []state.Sale{}
	s.Store.View(func(doc *state.Document) {
		for i := len(doc.Sales) - 1; i >= 0; i-- {
			sale := doc.Sales[i]
			if date != "" && sale.Date != date {
				continue
			}
			out = append(out, sale)
		}
	})
	return out, nil
}
