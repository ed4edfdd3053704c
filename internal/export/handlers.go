// Package export serves the bookkeeping data as downloadable files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/docelucro/backend-doce/internal/common"
	"github.com/docelucro/backend-doce/internal/state"
	"github.com/docelucro/backend-doce/internal/store"
)

// Handler exposes the export endpoints.
type Handler struct {
	Store *store.Store
	Now   func() time.Time
}

func (h Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// SalesCSV handles GET /api/v1/export/sales.csv.
func (h Handler) SalesCSV(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "export not configured", nil)
		return
	}
	doc, err := h.Store.Snapshot()
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="vendas.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Data", "Metodo", "Venda", "Custo", "Taxa", "Lucro"})
	for _, sale := range doc.Sales {
		_ = cw.Write([]string{
			sale.Date,
			string(sale.Method),
			formatAmount(sale.Total),
			formatAmount(sale.TotalCost),
			formatAmount(sale.CardFee),
			formatAmount(sale.Profit),
		})
	}
	cw.Flush()
}

// BackupJSON handles GET /api/v1/export/backup.json.
func (h Handler) BackupJSON(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "export not configured", nil)
		return
	}
	doc, err := h.Store.Snapshot()
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="doce-lucro-backup.json"`)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(doc)
}

// Reset handles POST /api/v1/document/reset, replacing the document
// with first-run defaults.
func (h Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "export not configured", nil)
		return
	}
	err := h.Store.Update(r.Context(), func(doc *state.Document) error {
		*doc = *state.DefaultDocument(h.now())
		return nil
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"reset": true}})
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
