package sales

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docelucro/backend-doce/internal/common"
)

// Handler exposes the draft cart and sale endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "sales service not configured", nil)
		return false
	}
	return true
}

// Quote handles GET /api/v1/sales/draft.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	quote, err := h.service.CurrentQuote(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}

type qtyRequest struct {
	Qty int `json:"qty"`
}

// SetQty handles PUT /api/v1/sales/draft/items/{productId}.
func (h *Handler) SetQty(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req qtyRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	quote, err := h.service.SetQty(r.Context(), chi.URLParam(r, "productId"), req.Qty)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}

// Patch handles PATCH /api/v1/sales/draft.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var patch DraftPatch
	if err := common.DecodeJSON(r, &patch); err != nil {
		common.WriteError(w, err)
		return
	}
	quote, err := h.service.Patch(r.Context(), patch)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}

// Clear handles DELETE /api/v1/sales/draft.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.service.Clear(r.Context()); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"cleared": true}})
}

// Finalize handles POST /api/v1/sales.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	sale, err := h.service.Finalize(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": sale})
}

// List handles GET /api/v1/sales?date=YYYY-MM-DD.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	list, err := h.service.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": list})
}
