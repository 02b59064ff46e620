package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"oauth-gateway/logger"
	"oauth-gateway/oauth"
)

// OAuthRevokeHandler serves POST /oauth/revoke. Per RFC 7009 the endpoint
// responds 200 whether or not the presented token was known, so revocation
// cannot be used to probe for live tokens.
type OAuthRevokeHandler struct {
	engine *oauth.Engine
}

// NewOAuthRevokeHandler creates a new revocation handler.
func NewOAuthRevokeHandler(engine *oauth.Engine) *OAuthRevokeHandler {
	return &OAuthRevokeHandler{engine: engine}
}

// HandleRevoke handles POST /oauth/revoke.
func (h *OAuthRevokeHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, &oauth.Error{
			Code:        oauth.ErrorInvalidRequest,
			Description: "malformed request body",
		})
		return
	}

	token := r.PostForm.Get("token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, &oauth.Error{
			Code:        oauth.ErrorInvalidRequest,
			Description: "token parameter is required",
		})
		return
	}

	if err := h.engine.Revoke(r.Context(), token); err != nil {
		logger.Error("Token revocation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, &oauth.Error{
			Code:        oauth.ErrorServerError,
			Description: "internal server error",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
}
