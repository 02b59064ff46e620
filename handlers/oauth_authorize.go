package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"oauth-gateway/logger"
	"oauth-gateway/oauth"
)

// OAuthAuthorizeHandler serves GET /oauth/authorize, the entry point of the
// authorization code flow.
type OAuthAuthorizeHandler struct {
	engine *oauth.Engine
}

// NewOAuthAuthorizeHandler creates a new authorize handler.
func NewOAuthAuthorizeHandler(engine *oauth.Engine) *OAuthAuthorizeHandler {
	return &OAuthAuthorizeHandler{engine: engine}
}

// HandleAuthorize validates the authorization request and, on success,
// redirects back to the client with a one-time authorization code.
func (h *OAuthAuthorizeHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &oauth.AuthorizeRequest{
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		ResponseType:        q.Get("response_type"),
		Scope:               q.Get("scope"),
		State:               q.Get("state"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
	}

	result, err := h.engine.Authorize(r.Context(), req)
	if err != nil {
		logger.Info("Authorization rejected",
			zap.String("client_id", req.ClientID),
			zap.Error(err))
		writeOAuthError(w, r, err)
		return
	}

	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}
