package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"oauth-gateway/logger"
	"oauth-gateway/models"
	"oauth-gateway/oauth"
)

// OAuthClientHandler serves POST /register, the open dynamic client
// registration endpoint. No authentication is required to register.
type OAuthClientHandler struct {
	engine *oauth.Engine
}

// NewOAuthClientHandler creates a new registration handler.
func NewOAuthClientHandler(engine *oauth.Engine) *OAuthClientHandler {
	return &OAuthClientHandler{engine: engine}
}

// HandleRegister handles POST /register.
func (h *OAuthClientHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Info("Malformed registration request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, &oauth.Error{
			Code:        oauth.ErrorInvalidClientMetadata,
			Description: "request body must be a JSON object",
		})
		return
	}

	resp, err := h.engine.Register(r.Context(), &req)
	if err != nil {
		writeOAuthError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}
