package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/docelucro/backend-doce/internal/common"
	"github.com/docelucro/backend-doce/internal/state"
	"github.com/docelucro/backend-doce/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(context.Background(), store.Config{
		Local:  &store.FileStore{Path: filepath.Join(t.TempDir(), "doc.json")},
		Logger: zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	return &Service{
		Store: st,
		Now:   func() time.Time { return time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC) },
	}
}

func TestCreateCoercesMoney(t *testing.T) {
	svc := newTestService(t)
	product, err := svc.Create(context.Background(), Input{Name: "  Brigadeiro  ", Price: 3.456, Cost: 1.234})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if product.Name != "Brigadeiro" {
		t.Fatalf("name = %q", product.Name)
	}
	if product.Price != 3.46 || product.Cost != 1.23 {
		t.Fatalf("price/cost = %v/%v, want 3.46/1.23", product.Price, product.Cost)
	}
	if product.ID == "" || product.CreatedAt.IsZero() {
		t.Fatal("missing id or createdAt")
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	svc := newTestService(t)
	cases := []Input{
		{Name: "", Price: 10},
		{Name: "Bolo", Price: 0},
		{Name: "Bolo", Price: -1},
		{Name: "Bolo", Price: 10, Cost: -5},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, common.ErrInvalidInput) {
			t.Fatalf("Create(%+v) error = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	product, err := svc.Create(ctx, Input{Name: "Bolo no pote", Price: 12, Cost: 5})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(ctx, product.ID, Input{Name: "Bolo no pote G", Price: 15, Cost: 6})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Price != 15 || updated.Name != "Bolo no pote G" {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := svc.Update(ctx, "missing", Input{Name: "x", Price: 1}); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("Update missing error = %v", err)
	}

	if err := svc.Delete(ctx, product.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, product.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("second Delete error = %v", err)
	}

	products, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("products = %+v", products)
	}
}

func TestDeleteKeepsSalesHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	product, err := svc.Create(ctx, Input{Name: "Trufa", Price: 5, Cost: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	err = svc.Store.Update(ctx, func(doc *state.Document) error {
		doc.Sales = append(doc.Sales, state.Sale{ID: state.NewID(), Total: 5})
		return nil
	})
	if err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	if err := svc.Delete(ctx, product.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	svc.Store.View(func(doc *state.Document) {
		if len(doc.Sales) != 1 {
			t.Fatalf("sales = %d, want 1", len(doc.Sales))
		}
	})
}

func TestPreviewEconomics(t *testing.T) {
	svc := newTestService(t)
	preview := svc.PreviewEconomics(10, 4)
	if preview.Profit != 6 {
		t.Fatalf("profit = %v, want 6", preview.Profit)
	}
	if preview.Margin != 60 {
		t.Fatalf("margin = %v, want 60", preview.Margin)
	}
	if preview.ROI != 150 {
		t.Fatalf("roi = %v, want 150", preview.ROI)
	}

	zero := svc.PreviewEconomics(10, 0)
	if zero.ROI != 0 {
		t.Fatalf("roi with zero cost = %v, want 0", zero.ROI)
	}
}
