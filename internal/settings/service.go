// Package settings manages the scalar store configuration.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docelucro/backend-doce/internal/common"
	"github.com/docelucro/backend-doce/internal/money"
	"github.com/docelucro/backend-doce/internal/state"
	"github.com/docelucro/backend-doce/internal/store"
)

// Patch carries partial settings updates. Nil fields are untouched.
type Patch struct {
	Theme       *string  `json:"theme"`
	StoreName   *string  `json:"storeName"`
	MonthlyGoal *float64 `json:"metaMensal"`
}

// Service owns the settings block of the document.
type Service struct {
	Store *store.Store
	Now   func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Get returns the current settings.
func (s *Service) Get(_ context.Context) (state.Settings, error) {
	if s == nil || s.Store == nil {
		return state.Settings{}, errors.New("settings service not configured")
	}
	var out state.Settings
	s.Store.View(func(doc *state.Document) {
		out = doc.Settings
	})
	return out, nil
}

// Update applies a patch. Setting the monthly goal re-anchors it to
// the current month.
func (s *Service) Update(ctx context.Context, patch Patch) (state.Settings, error) {
	if s == nil || s.Store == nil {
		return state.Settings{}, errors.New("settings service not configured")
	}
	var out state.Settings
	now := s.now()
	err := s.Store.Update(ctx, func(doc *state.Document) error {
		if patch.Theme != nil {
			theme := strings.TrimSpace(*patch.Theme)
			if theme != "dark" && theme != "light" {
				return fmt.Errorf("theme %q: %w", theme, common.ErrInvalidInput)
			}
			doc.Settings.Theme = theme
		}
		if patch.StoreName != nil {
			name := strings.TrimSpace(*patch.StoreName)
			if name == "" {
				return fmt.Errorf("storeName is required: %w", common.ErrInvalidInput)
			}
			doc.Settings.StoreName = name
		}
		if patch.MonthlyGoal != nil {
			goal := money.Round2(money.ToMoney(*patch.MonthlyGoal))
			doc.Settings.MonthlyGoal = goal
			doc.Settings.GoalMonth = state.MonthKey(now)
		}
		out = doc.Settings
		return nil
	})
	if err != nil {
		return state.Settings{}, err
	}
	return out, nil
}
