// Package cashbook is the append-only cash ledger.
package cashbook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docelucro/backend-doce/internal/common"
	"github.com/docelucro/backend-doce/internal/events"
	"github.com/docelucro/backend-doce/internal/money"
	"github.com/docelucro/backend-doce/internal/obs"
	"github.com/docelucro/backend-doce/internal/state"
	"github.com/docelucro/backend-doce/internal/store"
)

// Input is a manual ledger entry.
type Input struct {
	Type  state.MoveType `json:"tipo"`
	Value float64        `json:"valor"`
	Note  string         `json:"note"`
	// Date overrides the ledger day, YYYY-MM-DD. Empty means today.
	Date string `json:"date"`
}

// Service owns the cash ledger.
type Service struct {
	Store *store.Store
	Bus   *events.Bus
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Append validates and records a move. Corrections are new entries;
// recorded moves are never edited.
func (s *Service) Append(ctx context.Context, in Input) (state.CashMove, error) {
	if s == nil || s.Store == nil {
		return state.CashMove{}, errors.New("cashbook service not configured")
	}
	switch in.Type {
	case state.MoveDinheiro, state.MovePix, state.MoveCartao, state.MoveSaida:
	default:
		return state.CashMove{}, fmt.Errorf("tipo %q: %w", in.Type, common.ErrInvalidInput)
	}
	value := money.Round2(money.ToMoney(in.Value))
	if value <= 0 {
		return state.CashMove{}, fmt.Errorf("valor must be positive: %w", common.ErrInvalidInput)
	}
	now := s.now()
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = state.DayKey(now)
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return state.CashMove{}, fmt.Errorf("date %q: %w", date, common.ErrInvalidInput)
	}
	move := state.CashMove{
		ID:        state.NewID(),
		Date:      date,
		Type:      in.Type,
		Value:     value,
		CreatedAt: now,
		Note:      strings.TrimSpace(in.Note),
	}
	err := s.Store.Update(ctx, func(doc *state.Document) error {
		doc.CashMoves = append(doc.CashMoves, move)
		return nil
	})
	if err != nil {
		return state.CashMove{}, err
	}
	if obs.CashMovesTotal != nil {
		obs.CashMovesTotal.WithLabelValues(string(move.Type)).Inc()
	}
	if s.Bus != nil {
		_, _ = s.Bus.Emit(ctx, events.TopicCashRecorded, move.ID, move)
	}
	return move, nil
}

// List returns ledger moves, optionally filtered by day key, newest
// first.
func (s *Service) List(_ context.Context, date string) ([]state.CashMove, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("cashbook service not configured")
	}
	out := []state.CashMove{}
	s.Store.View(func(doc *state.Document) {
		for i := len(doc.CashMoves) - 1; i >= 0; i-- {
			move := doc.CashMoves[i]
			if date != "" && move.Date != date {
				continue
			}
			out = append(out, move)
		}
	})
	return out, nil
}
