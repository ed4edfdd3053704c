package settings

import (
	"net/http"

	"github.com/docelucro/backend-doce/internal/common"
)

// Handler exposes the settings endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /api/v1/settings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "settings service not configured", nil)
		return
	}
	settings, err := h.service.Get(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": settings})
}

// Update handles PUT /api/v1/settings.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "settings service not configured", nil)
		return
	}
	var patch Patch
	if err := common.DecodeJSON(r, &patch); err != nil {
		common.WriteError(w, err)
		return
	}
	settings, err := h.service.Update(r.Context(), patch)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": settings})
}
