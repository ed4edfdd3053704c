package pricing

import "testing"

func TestCardFeeByMethod(t *testing.T) {
	if got := CardFee(1000, MethodCartao); got != 29.9 {
		t.Fatalf("card fee on 1000 = %v, want 29.9", got)
	}
	if got := CardFee(1000, MethodPix); got != 0 {
		t.Fatalf("pix fee = %v, want 0", got)
	}
	if got := CardFee(1000, MethodDinheiro); got != 0 {
		t.Fatalf("cash fee = %v, want 0", got)
	}
	if got := CardFee(1000, Method("boleto")); got != 0 {
		t.Fatalf("unknown method fee = %v, want 0", got)
	}
}

func TestProfitMayBeNegative(t *testing.T) {
	if got := Profit(100, 40, 10); got != 50 {
		t.Fatalf("Profit(100, 40, 10) = %v, want 50", got)
	}
	if got := Profit(10, 20, 0); got != -10 {
		t.Fatalf("Profit(10, 20, 0) = %v, want -10", got)
	}
}

func TestMarginBoundaries(t *testing.T) {
	if got := Margin(0, 5); got != 0 {
		t.Fatalf("Margin(0, 5) = %v, want 0", got)
	}
	if got := Margin(10, 5); got != 50 {
		t.Fatalf("Margin(10, 5) = %v, want 50", got)
	}
	if got := Margin(10, 15); got != -50 {
		t.Fatalf("Margin(10, 15) = %v, want -50", got)
	}
}

func TestROI(t *testing.T) {
	if got := ROI(5, 10); got != 50 {
		t.Fatalf("ROI(5, 10) = %v, want 50", got)
	}
	if got := ROI(5, 0); got != 0 {
		t.Fatalf("ROI(5, 0) = %v, want 0", got)
	}
}
