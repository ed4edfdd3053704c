package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/docelucro/backend-doce/internal/pricing"
	"github.com/docelucro/backend-doce/internal/state"
	"github.com/docelucro/backend-doce/internal/store"
)

func newTestHandler(t *testing.T) Handler {
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
			{Date: "2026-03-10", Method: pricing.MethodCartao, Total: 51.5, TotalCost: 16, CardFee: 1.5, Profit: 34},
			{Date: "2026-03-11", Method: pricing.MethodPix, Total: 12, TotalCost: 5, Profit: 7},
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return Handler{Store: st, Now: func() time.Time { return time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC) }}
}

func TestSalesCSV(t *testing.T) {
	h := newTestHandler(t)
	rr := httptest.NewRecorder()
	h.SalesCSV(rr, httptest.NewRequest(http.MethodGet, "/api/v1/export/sales.csv", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d: %q", len(lines), lines)
	}
	if lines[0] != "Data,Metodo,Venda,Custo,Taxa,Lucro" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "2026-03-10,cartao,51.50,16.00,1.50,34.00" {
		t.Fatalf("row = %q", lines[1])
	}
}

func TestBackupJSON(t *testing.T) {
	h := newTestHandler(t)
	rr := httptest.NewRecorder()
	h.BackupJSON(rr, httptest.NewRequest(http.MethodGet, "/api/v1/export/backup.json", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var doc state.Document
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode backup: %v", err)
	}
	if len(doc.Sales) != 2 {
		t.Fatalf("sales in backup = %d", len(doc.Sales))
	}
}

func TestReset(t *testing.T) {
	h := newTestHandler(t)
	rr := httptest.NewRecorder()
	h.Reset(rr, httptest.NewRequest(http.MethodPost, "/api/v1/document/reset", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	h.Store.View(func(doc *state.Document) {
		if len(doc.Sales) != 0 {
			t.Fatalf("sales after reset = %d", len(doc.Sales))
		}
		if doc.Settings.GoalMonth != "2026-03" {
			t.Fatalf("goal month = %q", doc.Settings.GoalMonth)
		}
	})
}
