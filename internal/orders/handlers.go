package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docelucro/backend-doce/internal/common"
	"github.com/docelucro/backend-doce/internal/pricing"
)

// Handler exposes the order endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "orders service not configured", nil)
		return false
	}
	return true
}

// List handles GET /api/v1/orders.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	list, err := h.service.List(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": list})
}

// Create handles POST /api/v1/orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in Input
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	order, err := h.service.Create(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": order})
}

// Update handles PUT /api/v1/orders/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var in Input
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	order, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": order})
}

// RegisterDeposit handles POST /api/v1/orders/{id}/deposit.
func (h *Handler) RegisterDeposit(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	order, err := h.service.RegisterDeposit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": order})
}

type deliverRequest struct {
	Method pricing.Method `json:"metodoRestante"`
}

// Deliver handles POST /api/v1/orders/{id}/deliver.
func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req deliverRequest
	if r.ContentLength != 0 {
		if err := common.DecodeJSON(r, &req); err != nil {
			common.WriteError(w, err)
			return
		}
	}
	order, err := h.service.Deliver(r.Context(), chi.URLParam(r, "id"), req.Method)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": order})
}

// Cancel handles POST /api/v1/orders/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	order, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": order})
}

// Delete handles DELETE /api/v1/orders/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]bool{"deleted": true}})
}
