package auth

import (
	"net/http"
	"strings"

	"github.com/docelucro/backend-doce/internal/common"
)

// Handler exposes the authentication endpoints.
type Handler struct {
	Service *Service
}

type loginRequest struct {
	PIN string `json:"pin"`
}

// Login exchanges the access PIN for a session token.
func (h Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "auth service not configured", nil)
		return
	}
	var req loginRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if strings.TrimSpace(req.PIN) == "" {
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_INPUT", "pin is required", nil)
		return
	}
	result, err := h.Service.Login(req.PIN)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, result)
}
