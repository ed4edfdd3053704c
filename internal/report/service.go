package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docelucro/backend-doce/internal/common"
	"github.com/docelucro/backend-doce/internal/state"
	"github.com/docelucro/backend-doce/internal/store"
)

// Dashboard is the home-screen payload.
type Dashboard struct {
	Today      Totals       `json:"hoje"`
	Week       Totals       `json:"ultimos7"`
	Month      Totals       `json:"mes"`
	Year       Totals       `json:"ano"`
	Cash       CashSummary  `json:"caixa"`
	Receivable float64      `json:"aReceber"`
	Goal       GoalProgress `json:"meta"`
	Top        []TopProduct `json:"maisVendidos"`
}

// Service computes reports over store snapshots with a short redis
// cache in front. TTL zero disables caching.
type Service struct {
	Store *store.Store
	R     *redis.Client
	TTL   time.Duration
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func cacheKey(parts ...any) string {
	formatted := make([]string, 0, len(parts)+1)
	formatted = append(formatted, "rep")
	for _, part := range parts {
		formatted = append(formatted, fmt.Sprint(part))
	}
	return strings.Join(formatted, ":")
}

// Summary returns the totals for a period. Period is one of day,
// month, year, 7d; key defaults to the current period.
func (s *Service) Summary(ctx context.Context, period, key string) (Totals, error) {
	if s == nil || s.Store == nil {
		return Totals{}, fmt.Errorf("report service not configured")
	}
	now := s.now()
	period = strings.ToLower(strings.TrimSpace(period))
	key = strings.TrimSpace(key)
	switch period {
	case "", "day":
		period = "day"
		if key == "" {
			key = state.DayKey(now)
		}
	case "month":
		if key == "" {
			key = state.MonthKey(now)
		}
	case "year":
		if key == "" {
			key = state.YearKey(now)
		}
	case "7d":
		key = state.DayKey(now)
	default:
		return Totals{}, fmt.Errorf("period %q: %w", period, common.ErrInvalidInput)
	}

	ck := cacheKey("sum", period, key)
	var cached Totals
	if s.fromCache(ctx, ck, &cached) {
		return cached, nil
	}
	var out Totals
	s.Store.View(func(doc *state.Document) {
		switch period {
		case "day":
			out = Day(doc, key)
		case "month":
			out = Month(doc, key)
		case "year":
			out = Year(doc, key)
		case "7d":
			out = Last7Days(doc, now)
		}
	})
	s.toCache(ctx, ck, out)
	return out, nil
}

// Cash returns the cash summary for a day, defaulting to today.
func (s *Service) Cash(ctx context.Context, date string) (CashSummary, error) {
	if s == nil || s.Store == nil {
		return CashSummary{}, fmt.Errorf("report service not configured")
	}
	date = strings.TrimSpace(date)
	if date == "" {
		date = state.DayKey(s.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return CashSummary{}, fmt.Errorf("date %q: %w", date, common.ErrInvalidInput)
	}
	ck := cacheKey("cash", date)
	var cached CashSummary
	if s.fromCache(ctx, ck, &cached) {
		return cached, nil
	}
	var out CashSummary
	s.Store.View(func(doc *state.Document) {
		out = CashSummaryForDate(doc, date)
	})
	s.toCache(ctx, ck, out)
	return out, nil
}

// GoalProgress returns the monthly goal status. Never cached; it is
// cheap and the settings can change at any time.
func (s *Service) GoalProgress(_ context.Context) (GoalProgress, error) {
	if s == nil || s.Store == nil {
		return GoalProgress{}, fmt.Errorf("report service not configured")
	}
	var out GoalProgress
	now := s.now()
	s.Store.View(func(doc *state.Document) {
		out = Goal(doc, now)
	})
	return out, nil
}

// Receivable returns the total still owed on open orders.
func (s *Service) Receivable(_ context.Context) (float64, error) {
	if s == nil || s.Store == nil {
		return 0, fmt.Errorf("report service not configured")
	}
	var out float64
	s.Store.View(func(doc *state.Document) {
		out = OpenOrdersReceivable(doc)
	})
	return out, nil
}

// Top returns the best-selling products of the current month.
func (s *Service) Top(ctx context.Context, limit int) ([]TopProduct, error) {
	if s == nil || s.Store == nil {
		return nil, fmt.Errorf("report service not configured")
	}
	if limit <= 0 {
		limit = 5
	}
	now := s.now()
	monthKey := state.MonthKey(now)
	ck := cacheKey("top", monthKey, limit)
	var cached []TopProduct
	if s.fromCache(ctx, ck, &cached) {
		return cached, nil
	}
	var out []TopProduct
	s.Store.View(func(doc *state.Document) {
		out = TopProducts(doc, func(sale state.Sale) bool {
			return strings.HasPrefix(sale.Date, monthKey+"-")
		}, limit)
	})
	s.toCache(ctx, ck, out)
	return out, nil
}

// Overview assembles the full dashboard payload.
func (s *Service) Overview(ctx context.Context) (Dashboard, error) {
	if s == nil || s.Store == nil {
		return Dashboard{}, fmt.Errorf("report service not configured")
	}
	now := s.now()
	var out Dashboard
	s.Store.View(func(doc *state.Document) {
		day := state.DayKey(now)
		out = Dashboard{
			Today:      Day(doc, day),
			Week:       Last7Days(doc, now),
			Month:      Month(doc, state.MonthKey(now)),
			Year:       Year(doc, state.YearKey(now)),
			Cash:       CashSummaryForDate(doc, day),
			Receivable: OpenOrdersReceivable(doc),
			Goal:       Goal(doc, now),
		}
		out.Top = TopProducts(doc, func(sale state.Sale) bool {
			return strings.HasPrefix(sale.Date, state.MonthKey(now)+"-")
		}, 5)
	})
	return out, nil
}

func (s *Service) fromCache(ctx context.Context, key string, dst any) bool {
	if s.R == nil || s.TTL <= 0 {
		return false
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	if s.R == nil || s.TTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.R.Set(ctx, key, data, s.TTL).Err()
}
