// Package orders manages encomendas: created ahead of time, mutable
// while open, settled once on delivery.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/docelucro/backend-doce/internal/common"
	"github.com/docelucro/backend-doce/internal/events"
	"github.com/docelucro/backend-doce/internal/money"
	"github.com/docelucro/backend-doce/internal/obs"
	"github.com/docelucro/backend-doce/internal/pricing"
	"github.com/docelucro/backend-doce/internal/state"
	"github.com/docelucro/backend-doce/internal/store"
)

// Input carries the mutable order fields.
type Input struct {
	Customer      string          `json:"cliente" validate:"required,max=120"`
	Whats         string          `json:"whats" validate:"max=32"`
	PickupDate    string          `json:"dataRetirada" validate:"omitempty,datetime=2006-01-02"`
	DeliveryFee   float64         `json:"taxaEntrega" validate:"gte=0"`
	Deposit       float64         `json:"sinal" validate:"gte=0"`
	Entries       []pricing.Entry `json:"entries" validate:"required,min=1,dive"`
	DepositMethod pricing.Method  `json:"metodoSinal"`
}

// Service owns the order book.
type Service struct {
	Store    *store.Store
	Bus      *events.Bus
	Validate *validator.Validate
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns the order book, open orders first, newest first within
// each status.
func (s *Service) List(_ context.Context) ([]state.Order, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("orders service not configured")
	}
	open := []state.Order{}
	rest := []state.Order{}
	s.Store.View(func(doc *state.Document) {
		for i := len(doc.Orders) - 1; i >= 0; i-- {
			o := doc.Orders[i]
			if o.Status == state.OrderOpen {
				open = append(open, o)
			} else {
				rest = append(rest, o)
			}
		}
	})
	return append(open, rest...), nil
}

// Create validates and appends a new open order. Totals are computed
// from the current catalog; encomendas never pay the card fee because
// the price is agreed up front.
func (s *Service) Create(ctx context.Context, in Input) (state.Order, error) {
	if s == nil || s.Store == nil {
		return state.Order{}, errors.New("orders service not configured")
	}
	if err := s.validateInput(in); err != nil {
		return state.Order{}, err
	}
	var order state.Order
	now := s.now()
	fee := money.Round2(money.ToMoney(in.DeliveryFee))
	deposit := money.Round2(money.ToMoney(in.Deposit))
	err := s.Store.Update(ctx, func(doc *state.Document) error {
		items := pricing.ResolveLineItems(in.Entries, doc.CatalogView())
		if len(items) == 0 {
			return fmt.Errorf("no resolvable items: %w", common.ErrInvalidInput)
		}
		totals := pricing.TotalsFromItems(items, pricing.MethodPix, 0, fee, 0)
		order = state.Order{
			ID:              state.NewID(),
			CreatedAt:       now,
			Status:          state.OrderOpen,
			Customer:        strings.TrimSpace(in.Customer),
			Whats:           strings.TrimSpace(in.Whats),
			PickupDate:      in.PickupDate,
			DeliveryFee:     fee,
			Deposit:         deposit,
			Entries:         in.Entries,
			Items:           items,
			Total:           totals.FinalTotal,
			TotalCost:       totals.TotalCost,
			EstimatedProfit: totals.Profit,
			DepositMethod:   in.DepositMethod,
			BalanceMethod:   pricing.MethodDinheiro,
		}
		doc.Orders = append(doc.Orders, order)
		return nil
	})
	if err != nil {
		return state.Order{}, err
	}
	if obs.OrdersTotal != nil {
		obs.OrdersTotal.WithLabelValues("created").Inc()
	}
	if s.Bus != nil {
		_, _ = s.Bus.Emit(ctx, events.TopicOrderCreated, order.ID, order)
	}
	return order, nil
}

// Update replaces the mutable fields of an open order and recomputes
// its totals. Delivered and canceled orders are immutable.
func (s *Service) Update(ctx context.Context, id string, in Input) (state.Order, error) {
	if s == nil || s.Store == nil {
		return state.Order{}, errors.New("orders service not configured")
	}
	if err := s.validateInput(in); err != nil {
		return state.Order{}, err
	}
	var updated state.Order
	fee := money.Round2(money.ToMoney(in.DeliveryFee))
	deposit := money.Round2(money.ToMoney(in.Deposit))
	err := s.Store.Update(ctx, func(doc *state.Document) error {
		order := doc.FindOrder(id)
		if order == nil {
			return fmt.Errorf("order %s: %w", id, common.ErrNotFound)
		}
		if order.Status != state.OrderOpen {
			return fmt.Errorf("order %s is %s: %w", id, order.Status, common.ErrConflict)
		}
		items := pricing.ResolveLineItems(in.Entries, doc.CatalogView())
		if len(items) == 0 {
			return fmt.Errorf("no resolvable items: %w", common.ErrInvalidInput)
		}
		totals := pricing.TotalsFromItems(items, pricing.MethodPix, 0, fee, 0)
		order.Customer = strings.TrimSpace(in.Customer)
		order.Whats = strings.TrimSpace(in.Whats)
		order.PickupDate = in.PickupDate
		order.DeliveryFee = fee
		order.Deposit = deposit
		order.Entries = in.Entries
		order.Items = items
		order.Total = totals.FinalTotal
		order.TotalCost = totals.TotalCost
		order.EstimatedProfit = totals.Profit
		if in.DepositMethod != "" {
			order.DepositMethod = in.DepositMethod
		}
		updated = *order
		return nil
	})
	if err != nil {
		return state.Order{}, err
	}
	return updated, nil
}

// RegisterDeposit records the sinal as an inflow cash move, once.
func (s *Service) RegisterDeposit(ctx context.Context, id string) (state.Order, error) {
	if s == nil || s.Store == nil {
		return state.Order{}, errors.New("orders service not configured")
	}
	var updated state.Order
	now := s.now()
	err := s.Store.Update(ctx, func(doc *state.Document) error {
		order := doc.FindOrder(id)
		if order == nil {
			return fmt.Errorf("order %s: %w", id, common.ErrNotFound)
		}
		if order.Status != state.OrderOpen {
			return fmt.Errorf("order %s is %s: %w", id, order.Status, common.ErrConflict)
		}
		if order.Deposit <= 0 {
			return fmt.Errorf("order %s has no sinal: %w", id, common.ErrInvalidInput)
		}
		if !order.DepositRecorded {
			method := order.DepositMethod
			if !method.Valid() {
				method = pricing.MethodDinheiro
			}
			doc.CashMoves = append(doc.CashMoves, state.CashMove{
				ID:        state.NewID(),
				Date:      state.DayKey(now),
				Type:      state.MoveTypeFor(method),
				Value:     order.Deposit,
				CreatedAt: now,
				Note:      "sinal " + order.Customer,
			})
			order.DepositRecorded = true
		}
		updated = *order
		return nil
	})
	if err != nil {
		return state.Order{}, err
	}
	return updated, nil
}

// Deliver settles an open order: the outstanding balance enters the
// cash ledger and a sale backing the order lands in the history.
// Replaying a delivery changes nothing.
func (s *Service) Deliver(ctx context.Context, id string, method pricing.Method) (state.Order, error) {
	if s == nil || s.Store == nil {
		return state.Order{}, errors.New("orders service not configured")
	}
	var updated state.Order
	now := s.now()
	err := s.Store.Update(ctx, func(doc *state.Document) error {
		order := doc.FindOrder(id)
		if order == nil {
			return fmt.Errorf("order %s: %w", id, common.ErrNotFound)
		}
		if order.Status == state.OrderCanceled {
			return fmt.Errorf("order %s is canceled: %w", id, common.ErrConflict)
		}
		if order.Status == state.OrderDelivered || order.DeliveryRecorded {
			order.Status = state.OrderDelivered
			order.DeliveryRecorded = true
			updated = *order
			return nil
		}
		if method.Valid() {
			order.BalanceMethod = method
		}
		if !order.BalanceMethod.Valid() {
			order.BalanceMethod = pricing.MethodDinheiro
		}
		day := state.DayKey(now)
		if balance := order.Balance(); balance > 0 {
			doc.CashMoves = append(doc.CashMoves, state.CashMove{
				ID:        state.NewID(),
				Date:      day,
				Type:      state.MoveTypeFor(order.BalanceMethod),
				Value:     balance,
				CreatedAt: now,
				Note:      "entrega " + order.Customer,
			})
		}
		doc.Sales = append(doc.Sales, state.Sale{
			ID:        state.NewID(),
			Date:      day,
			CreatedAt: now,
			Method:    order.BalanceMethod,
			Items:     order.Items,
			Surcharge: order.DeliveryFee,
			Total:     order.Total,
			TotalCost: order.TotalCost,
			Profit:    order.EstimatedProfit,
			OrderID:   order.ID,
		})
		order.Status = state.OrderDelivered
		order.DeliveryRecorded = true
		updated = *order
		return nil
	})
	if err != nil {
		return state.Order{}, err
	}
	if obs.OrdersTotal != nil {
		obs.OrdersTotal.WithLabelValues("delivered").Inc()
	}
	if obs.SalesTotal != nil {
		obs.SalesTotal.WithLabelValues(string(updated.BalanceMethod)).Inc()
	}
	if s.Bus != nil {
		_, _ = s.Bus.Emit(ctx, events.TopicOrderDelivered, updated.ID, updated)
	}
	return updated, nil
}

// Cancel closes an open order without settling it.
func (s *Service) Cancel(ctx context.Context, id string) (state.Order, error) {
	if s == nil || s.Store == nil {
		return state.Order{}, errors.New("orders service not configured")
	}
	var updated state.Order
	err := s.Store.Update(ctx, func(doc *state.Document) error {
		order := doc.FindOrder(id)
		if order == nil {
			return fmt.Errorf("order %s: %w", id, common.ErrNotFound)
		}
		if order.Status != state.OrderOpen {
			return fmt.Errorf("order %s is %s: %w", id, order.Status, common.ErrConflict)
		}
		order.Status = state.OrderCanceled
		updated = *order
		return nil
	})
	if err != nil {
		return state.Order{}, err
	}
	if obs.OrdersTotal != nil {
		obs.OrdersTotal.WithLabelValues("canceled").Inc()
	}
	if s.Bus != nil {
		_, _ = s.Bus.Emit(ctx, events.TopicOrderCanceled, updated.ID, updated)
	}
	return updated, nil
}

// Delete removes an order that never settled. Delivered orders stay;
// their sale and cash moves reference them.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s == nil || s.Store == nil {
		return errors.New("orders service not configured")
	}
	return s.Store.Update(ctx, func(doc *state.Document) error {
		for i := range doc.Orders {
			if doc.Orders[i].ID != id {
				continue
			}
			if doc.Orders[i].Status == state.OrderDelivered {
				return fmt.Errorf("order %s already delivered: %w", id, common.ErrConflict)
			}
			doc.Orders = append(doc.Orders[:i], doc.Orders[i+1:]...)
			return nil
		}
		return fmt.Errorf("order %s: %w", id, common.ErrNotFound)
	})
}

func (s *Service) validateInput(in Input) error {
	v := s.Validate
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	if in.DepositMethod != "" && !in.DepositMethod.Valid() {
		return fmt.Errorf("metodoSinal %q: %w", in.DepositMethod, common.ErrInvalidInput)
	}
	return nil
}
