package resilience

import (
	"testing"
	"time"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		if !b.Allow() {
			t.Fatalf("call %d should be allowed", i)
		}
		b.Report(false)
	}
	if b.CurrentState() != Closed {
		t.Fatalf("expected closed before threshold, got %s", b.CurrentState())
	}

	b.Report(false)
	if b.CurrentState() != Open {
		t.Fatalf("expected open after threshold, got %s", b.CurrentState())
	}
	if b.Allow() {
		t.Fatal("open breaker should refuse calls")
	}
}

func TestBreakerSuccessResetsFailureRun(t *testing.T) {
	b := NewBreaker(2, time.Minute)

	b.Report(false)
	b.Report(true)
	b.Report(false)
	if b.CurrentState() != Closed {
		t.Fatalf("interleaved successes should keep the breaker closed, got %s", b.CurrentState())
	}
}

func TestBreakerProbesAfterCoolOff(t *testing.T) {
	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	b := NewBreaker(1, 30*time.Second).WithNow(func() time.Time { return clock })

	b.Report(false)
	if b.Allow() {
		t.Fatal("breaker should be open")
	}

	clock = clock.Add(31 * time.Second)
	if !b.Allow() {
		t.Fatal("expected a probe after cool-off")
	}
	if b.CurrentState() != HalfOpen {
		t.Fatalf("expected half-open, got %s", b.CurrentState())
	}

	b.Report(true)
	if b.CurrentState() != Closed {
		t.Fatalf("expected closed after successful probe, got %s", b.CurrentState())
	}
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	b := NewBreaker(1, 30*time.Second).WithNow(func() time.Time { return clock })

	b.Report(false)
	clock = clock.Add(31 * time.Second)
	if !b.Allow() {
		t.Fatal("expected a probe after cool-off")
	}
	b.Report(false)
	if b.CurrentState() != Open {
		t.Fatalf("expected open after failed probe, got %s", b.CurrentState())
	}
	if b.Allow() {
		t.Fatal("breaker should refuse calls right after reopening")
	}
}
