package state

import (
	"time"

	"github.com/docelucro/backend-doce/internal/pricing"
)

// SchemaVersion is the current document schema. Documents written by
// older builds are upgraded step by step on load.
const SchemaVersion = 2

// Migrate upgrades doc in place from its recorded schema version to
// the current one and reports whether anything changed. Each step is
// pure given (doc, now) and safe to re-run.
func Migrate(doc *Document, now time.Time) bool {
	if doc == nil {
		return false
	}
	changed := false
	if doc.SchemaVersion < 1 {
		changed = migrateV1(doc, now) || changed
		doc.SchemaVersion = 1
		changed = true
	}
	if doc.SchemaVersion < 2 {
		changed = migrateV2(doc) || changed
		doc.SchemaVersion = 2
		changed = true
	}
	return changed
}

// migrateV1 backfills collections and settings that predate the
// versioned schema.
func migrateV1(doc *Document, now time.Time) bool {
	changed := false
	if doc.Products == nil {
		doc.Products = []Product{}
		changed = true
	}
	if doc.Sales == nil {
		doc.Sales = []Sale{}
		changed = true
	}
	if doc.Orders == nil {
		doc.Orders = []Order{}
		changed = true
	}
	if doc.CashMoves == nil {
		doc.CashMoves = []CashMove{}
		changed = true
	}
	if doc.Settings.Theme == "" {
		doc.Settings.Theme = "dark"
		changed = true
	}
	if doc.Settings.StoreName == "" {
		doc.Settings.StoreName = "Doce Lucro"
		changed = true
	}
	if doc.Settings.MonthlyGoal <= 0 {
		doc.Settings.MonthlyGoal = 3000
		changed = true
	}
	if doc.Settings.GoalMonth == "" {
		doc.Settings.GoalMonth = MonthKey(now)
		changed = true
	}
	return changed
}

// migrateV2 normalizes draft defaults and order lifecycle flags
// introduced after the first release.
func migrateV2(doc *Document) bool {
	changed := false
	if doc.Draft.Method == "" {
		doc.Draft.Method = pricing.MethodPix
		changed = true
	}
	for i := range doc.Orders {
		o := &doc.Orders[i]
		if o.Status == "" {
			o.Status = OrderOpen
			changed = true
		}
		if o.Status == OrderDelivered && !o.DeliveryRecorded {
			// Orders delivered before the idempotency flag existed
			// already had their ledger entries written.
			o.DeliveryRecorded = true
			changed = true
		}
		if o.BalanceMethod == "" {
			o.BalanceMethod = pricing.MethodDinheiro
			changed = true
		}
	}
	return changed
}
