package pricing

import "testing"

var catalog = []Product{
	{ID: "a", Name: "Bolo no pote", Price: 25, Cost: 8},
	{ID: "b", Name: "Brigadeiro", Price: 18, Cost: 7},
}

func TestComputeTotalsDeterministic(t *testing.T) {
	cart := []Entry{{ProductID: "a", Qty: 2}}
	for i := 0; i < 3; i++ {
		got := ComputeTotals(cart, catalog, MethodPix, 0, 0)
		want := Totals{Subtotal: 50, TotalCost: 16, Fee: 0, FinalTotal: 50, Profit: 34}
		if got != want {
			t.Fatalf("run %d: totals = %+v, want %+v", i, got, want)
		}
	}
}

func TestComputeTotalsCardFee(t *testing.T) {
	cart := []Entry{{ProductID: "a", Qty: 2}}
	got := ComputeTotals(cart, catalog, MethodCartao, 0, 0)
	if got.Fee != 1.50 {
		t.Fatalf("fee = %v, want 1.50", got.Fee)
	}
	if got.FinalTotal != 51.50 {
		t.Fatalf("final total = %v, want 51.50", got.FinalTotal)
	}
	if got.Profit != Profit(51.50, 16, 1.50) {
		t.Fatalf("profit = %v, want recomputed identity", got.Profit)
	}
}

func TestStaleReferenceDropped(t *testing.T) {
	cart := []Entry{{ProductID: "a", Qty: 2}}
	// Product removed from the catalog after the cart was built.
	got := ComputeTotals(cart, []Product{{ID: "b", Name: "Brigadeiro", Price: 18, Cost: 7}}, MethodPix, 0, 0)
	if got.Subtotal != 0 || got.FinalTotal != 0 {
		t.Fatalf("expected empty totals for stale cart, got %+v", got)
	}
	if items := ResolveLineItems(cart, nil); len(items) != 0 {
		t.Fatalf("expected no line items, got %d", len(items))
	}
}

func TestResolvePreservesEntryOrder(t *testing.T) {
	cart := []Entry{{ProductID: "b", Qty: 1}, {ProductID: "a", Qty: 3}, {ProductID: "gone", Qty: 2}}
	items := ResolveLineItems(cart, catalog)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "b" || items[1].ID != "a" {
		t.Fatalf("entry order not preserved: %+v", items)
	}
}

func TestDiscountMayExceedSubtotal(t *testing.T) {
	cart := []Entry{{ProductID: "b", Qty: 1}}
	got := ComputeTotals(cart, catalog, MethodPix, 30, 0)
	if got.FinalTotal != -12 {
		t.Fatalf("final total = %v, want -12", got.FinalTotal)
	}
}

func TestChangeAndShortfall(t *testing.T) {
	if got := ChangeAndShortfall(50, 40, MethodDinheiro); got.Shortfall != 10 || got.Change != 0 {
		t.Fatalf("short payment = %+v, want shortfall 10", got)
	}
	if got := ChangeAndShortfall(50, 60, MethodDinheiro); got.Shortfall != 0 || got.Change != 10 {
		t.Fatalf("over payment = %+v, want change 10", got)
	}
	if got := ChangeAndShortfall(50, 0, MethodPix); got != (CashBreakdown{}) {
		t.Fatalf("pix breakdown = %+v, want zero pair", got)
	}
}
