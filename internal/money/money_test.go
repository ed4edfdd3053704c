package money

import (
	"math"
	"testing"
)

func TestToMoneyCoercion(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{10.5, 10.5},
		{0, 0},
		{-3, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}
	for _, c := range cases {
		if got := ToMoney(c.in); got != c.want {
			t.Fatalf("ToMoney(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRound2HalfUp(t *testing.T) {
	if got := Round2(1.495); got != 1.50 {
		t.Fatalf("Round2(1.495) = %v, want 1.50", got)
	}
	if got := Round2(1.494); got != 1.49 {
		t.Fatalf("Round2(1.494) = %v, want 1.49", got)
	}
	if got := Round2(math.NaN()); got != 0 {
		t.Fatalf("Round2(NaN) = %v, want 0", got)
	}
}

func TestBpsExactCents(t *testing.T) {
	// 2.99% of 50 is 1.495; naive float multiplication lands below
	// the half-cent boundary and would round down.
	if got := Bps(50, 299); got != 1.50 {
		t.Fatalf("Bps(50, 299) = %v, want 1.50", got)
	}
	if got := Bps(1000, 299); got != 29.9 {
		t.Fatalf("Bps(1000, 299) = %v, want 29.9", got)
	}
	if got := Bps(-10, 299); got != 0 {
		t.Fatalf("Bps(-10, 299) = %v, want 0", got)
	}
	if got := Bps(100, 0); got != 0 {
		t.Fatalf("Bps(100, 0) = %v, want 0", got)
	}
}

func TestSubMayBeNegative(t *testing.T) {
	if got := Sub(10, 20); got != -10 {
		t.Fatalf("Sub(10, 20) = %v, want -10", got)
	}
	if got := Sub(0.3, 0.1, 0.1); got != 0.1 {
		t.Fatalf("Sub(0.3, 0.1, 0.1) = %v, want 0.1", got)
	}
}
