package report

import (
	"time"

	"github.com/docelucro/backend-doce/internal/money"
	"github.com/docelucro/backend-doce/internal/state"
)

// GoalProgress tracks the monthly profit goal.
type GoalProgress struct {
	Goal          float64 `json:"meta"`
	Achieved      float64 `json:"alcancado"`
	Remaining     float64 `json:"faltam"`
	Percent       float64 `json:"percentual"`
	DaysLeft      int     `json:"diasRestantes"`
	DailyRequired float64 `json:"mediaDiariaNecessaria"`
}

// Goal computes the progress toward the configured monthly goal. The
// meta is a profit target, so progress measures the month's lucro,
// not its revenue. Percent is capped at 100; a goal of zero reports
// zero progress.
func Goal(doc *state.Document, now time.Time) GoalProgress {
	monthKey := state.MonthKey(now)
	achieved := Month(doc, monthKey).Lucro

	goal := doc.Settings.MonthlyGoal
	if doc.Settings.GoalMonth != "" && doc.Settings.GoalMonth != monthKey {
		// goal was set for another month, treat as unset
		goal = 0
	}

	out := GoalProgress{Goal: goal, Achieved: achieved}
	if goal <= 0 {
		return out
	}
	out.Remaining = money.Sub(goal, achieved)
	if out.Remaining < 0 {
		out.Remaining = 0
	}
	percent := achieved / goal * 100
	if percent > 100 {
		percent = 100
	}
	out.Percent = money.Round2(percent)

	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	out.DaysLeft = lastDay - now.Day() + 1
	if out.Remaining > 0 && out.DaysLeft > 0 {
		out.DailyRequired = money.Round2(out.Remaining / float64(out.DaysLeft))
	}
	return out
}
