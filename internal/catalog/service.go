// Package catalog manages the product list and its pricing previews.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/docelucro/backend-doce/internal/common"
	"github.com/docelucro/backend-doce/internal/money"
	"github.com/docelucro/backend-doce/internal/pricing"
	"github.com/docelucro/backend-doce/internal/state"
	"github.com/docelucro/backend-doce/internal/store"
)

// Input carries the mutable product fields.
type Input struct {
	Name  string  `json:"nome" validate:"required,max=120"`
	Price float64 `json:"preco" validate:"required,gt=0"`
	Cost  float64 `json:"custo" validate:"gte=0"`
}

// Preview shows the per-unit economics for a price/cost pair.
type Preview struct {
	Profit float64 `json:"lucroUnitario"`
	Margin float64 `json:"margem"`
	ROI    float64 `json:"roi"`
}

// Service owns product CRUD against the document store.
type Service struct {
	Store    *store.Store
	Validate *validator.Validate
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns the products in insertion order.
func (s *Service) List(_ context.Context) ([]state.Product, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("catalog service not configured")
	}
	var out []state.Product
	s.Store.View(func(doc *state.Document) {
		out = append([]state.Product(nil), doc.Products...)
	})
	if out == nil {
		out = []state.Product{}
	}
	return out, nil
}

// Create validates and appends a new product.
func (s *Service) Create(ctx context.Context, in Input) (state.Product, error) {
	if s == nil || s.Store == nil {
		return state.Product{}, errors.New("catalog service not configured")
	}
	if err := s.validate(in); err != nil {
		return state.Product{}, err
	}
	product := state.Product{
		ID:        state.NewID(),
		Name:      strings.TrimSpace(in.Name),
		Price:     money.Round2(money.ToMoney(in.Price)),
		Cost:      money.Round2(money.ToMoney(in.Cost)),
		CreatedAt: s.now(),
	}
	err := s.Store.Update(ctx, func(doc *state.Document) error {
		doc.Products = append(doc.Products, product)
		return nil
	})
	if err != nil {
		return state.Product{}, err
	}
	return product, nil
}

// Update replaces the mutable fields of an existing product. Sales
// already recorded keep their own copies of name, price, and cost.
func (s *Service) Update(ctx context.Context, id string, in Input) (state.Product, error) {
	if s == nil || s.Store == nil {
		return state.Product{}, errors.New("catalog service not configured")
	}
	if err := s.validate(in); err != nil {
		return state.Product{}, err
	}
	var updated state.Product
	err := s.Store.Update(ctx, func(doc *state.Document) error {
		for i := range doc.Products {
			if doc.Products[i].ID != id {
				continue
			}
			doc.Products[i].Name = strings.TrimSpace(in.Name)
			doc.Products[i].Price = money.Round2(money.ToMoney(in.Price))
			doc.Products[i].Cost = money.Round2(money.ToMoney(in.Cost))
			updated = doc.Products[i]
			return nil
		}
		return fmt.Errorf("product %s: %w", id, common.ErrNotFound)
	})
	if err != nil {
		return state.Product{}, err
	}
	return updated, nil
}

// Delete removes a product from the catalog. History is untouched;
// open order entries pointing at it resolve to nothing afterwards.
func (s *Service) Delete(ctx context.Context, id string) error {
	if s == nil || s.Store == nil {
		return errors.New("catalog service not configured")
	}
	return s.Store.Update(ctx, func(doc *state.Document) error {
		for i := range doc.Products {
			if doc.Products[i].ID != id {
				continue
			}
			doc.Products = append(doc.Products[:i], doc.Products[i+1:]...)
			return nil
		}
		return fmt.Errorf("product %s: %w", id, common.ErrNotFound)
	})
}

// PreviewEconomics computes unit profit, margin, and ROI for a
// prospective price/cost pair.
func (s *Service) PreviewEconomics(price, cost float64) Preview {
	p := money.ToMoney(price)
	c := money.ToMoney(cost)
	return Preview{
		Profit: money.Sub(p, c),
		Margin: pricing.Margin(p, c),
		ROI:    pricing.ROI(money.Sub(p, c), c),
	}
}

func (s *Service) validate(in Input) error {
	v := s.Validate
	if v == nil {
		v = validator.New()
	}
	if err := v.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	return nil
}
