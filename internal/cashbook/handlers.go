package cashbook

import (
	"net/http"

	"github.com/docelucro/backend-doce/internal/common"
)

// Handler exposes the cash ledger endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Append handles POST /api/v1/cash.
func (h *Handler) Append(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cashbook service not configured", nil)
		return
	}
	var in Input
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	move, err := h.service.Append(r.Context(), in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": move})
}

// List handles GET /api/v1/cash?date=YYYY-MM-DD.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cashbook service not configured", nil)
		return
	}
	list, err := h.service.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": list})
}
