package report

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/docelucro/backend-doce/internal/common"
	"github.com/docelucro/backend-doce/internal/state"
	"github.com/docelucro/backend-doce/internal/store"
)

var reportNow = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, r *redis.Client, ttl time.Duration) *Service {
	t.Helper()
	st, err := store.Open(context.Background(), store.Config{
		Local:  &store.FileStore{Path: filepath.Join(t.TempDir(), "doc.json")},
		Logger: zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	err = st.Update(context.Background(), func(doc *state.Document) error {
		doc.Sales = []state.Sale{
			{ID: "s1", Date: "2024-01-10", Total: 100, TotalCost: 40},
			{ID: "s2", Date: "2024-01-20", Total: 200, TotalCost: 80},
		}
		doc.CashMoves = []state.CashMove{
			{Date: "2024-01-20", Type: state.MovePix, Value: 200},
		}
		doc.Orders = []state.Order{
			{ID: "o1", Status: state.OrderOpen, Total: 100, Deposit: 30},
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &Service{Store: st, R: r, TTL: ttl, Now: func() time.Time { return reportNow }}
}

func TestSummaryPeriods(t *testing.T) {
	svc := newTestService(t, nil, 0)
	ctx := context.Background()

	day, err := svc.Summary(ctx, "day", "")
	if err != nil {
		t.Fatalf("Summary day: %v", err)
	}
	if day.Faturamento != 200 {
		t.Fatalf("day = %+v", day)
	}

	month, err := svc.Summary(ctx, "month", "2024-01")
	if err != nil {
		t.Fatalf("Summary month: %v", err)
	}
	if month.Faturamento != 300 || month.Lucro != 180 {
		t.Fatalf("month = %+v", month)
	}

	if _, err := svc.Summary(ctx, "decade", ""); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("bad period error = %v", err)
	}
}

func TestSummaryUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := newTestService(t, client, time.Minute)
	ctx := context.Background()

	first, err := svc.Summary(ctx, "month", "2024-01")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	// mutate the document; the cache keeps serving the old answer
	err = svc.Store.Update(ctx, func(doc *state.Document) error {
		doc.Sales = append(doc.Sales, state.Sale{ID: "s9", Date: "2024-01-21", Total: 999})
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	cached, err := svc.Summary(ctx, "month", "2024-01")
	if err != nil {
		t.Fatalf("Summary cached: %v", err)
	}
	if cached != first {
		t.Fatalf("cached = %+v, want %+v", cached, first)
	}

	mr.FastForward(2 * time.Minute)
	fresh, err := svc.Summary(ctx, "month", "2024-01")
	if err != nil {
		t.Fatalf("Summary fresh: %v", err)
	}
	if fresh.Faturamento != 1299 {
		t.Fatalf("fresh = %+v", fresh)
	}
}

func TestCashValidatesDate(t *testing.T) {
	svc := newTestService(t, nil, 0)
	if _, err := svc.Cash(context.Background(), "20/01/2024"); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("error = %v", err)
	}
	summary, err := svc.Cash(context.Background(), "")
	if err != nil {
		t.Fatalf("Cash: %v", err)
	}
	if summary.Pix != 200 || summary.Saldo != 200 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestOverview(t *testing.T) {
	svc := newTestService(t, nil, 0)
	dashboard, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if dashboard.Today.Faturamento != 200 {
		t.Fatalf("today = %+v", dashboard.Today)
	}
	if dashboard.Month.Faturamento != 300 {
		t.Fatalf("month = %+v", dashboard.Month)
	}
	if dashboard.Receivable != 70 {
		t.Fatalf("receivable = %v", dashboard.Receivable)
	}
	if dashboard.Cash.Saldo != 200 {
		t.Fatalf("cash = %+v", dashboard.Cash)
	}
}

func TestGoalProgressTracksProfit(t *testing.T) {
	svc := newTestService(t, nil, 0)
	err := svc.Store.Update(context.Background(), func(doc *state.Document) error {
		doc.Settings.MonthlyGoal = 1000
		doc.Settings.GoalMonth = "2024-01"
		return nil
	})
	if err != nil {
		t.Fatalf("set goal: %v", err)
	}

	goal, err := svc.GoalProgress(context.Background())
	if err != nil {
		t.Fatalf("GoalProgress: %v", err)
	}
	// January revenue is 300 but lucro is 180; the meta follows lucro
	if goal.Achieved != 180 {
		t.Fatalf("achieved = %v, want 180", goal.Achieved)
	}
	if goal.Percent != 18 {
		t.Fatalf("percent = %v, want 18", goal.Percent)
	}
	if goal.Remaining != 820 {
		t.Fatalf("remaining = %v, want 820", goal.Remaining)
	}
}

func TestReceivable(t *testing.T) {
	svc := newTestService(t, nil, 0)
	total, err := svc.Receivable(context.Background())
	if err != nil {
		t.Fatalf("Receivable: %v", err)
	}
	if total != 70 {
		t.Fatalf("receivable = %v", total)
	}
}
