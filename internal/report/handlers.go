package report

import (
	"net/http"

	"github.com/docelucro/backend-doce/internal/common"
)

// Handler exposes the report endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "report service not configured", nil)
		return false
	}
	return true
}

// Overview handles GET /api/v1/report.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	dashboard, err := h.service.Overview(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": dashboard})
}

// Summary handles GET /api/v1/report/summary?period=&key=.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	totals, err := h.service.Summary(r.Context(), r.URL.Query().Get("period"), r.URL.Query().Get("key"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": totals})
}

// Cash handles GET /api/v1/report/cash?date=.
func (h *Handler) Cash(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	summary, err := h.service.Cash(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary})
}

// Goal handles GET /api/v1/report/goal.
func (h *Handler) Goal(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	progress, err := h.service.GoalProgress(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": progress})
}

// Receivable handles GET /api/v1/report/receivables.
func (h *Handler) Receivable(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	total, err := h.service.Receivable(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]float64{"aReceber": total}})
}

// Top handles GET /api/v1/report/top-products?limit=.
func (h *Handler) Top(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), 5)
	top, err := h.service.Top(r.Context(), limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": top})
}
