package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"oauth-gateway/logger"
	"oauth-gateway/models"
	"oauth-gateway/oauth"
)

// OAuthTokenHandler serves POST /oauth/token, exchanging authorization codes
// for bearer tokens.
type OAuthTokenHandler struct {
	engine *oauth.Engine
}

// NewOAuthTokenHandler creates a new token handler.
func NewOAuthTokenHandler(engine *oauth.Engine) *OAuthTokenHandler {
	return &OAuthTokenHandler{engine: engine}
}

// HandleToken handles POST /oauth/token.
// Form encoding is the primary request format; a JSON body is accepted for
// clients that send one. Client credentials may arrive in the body or via
// HTTP Basic auth (client_secret_basic).
func (h *OAuthTokenHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	req, err := parseTokenRequest(r)
	if err != nil {
		logger.Info("Malformed token request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, &oauth.Error{
			Code:        oauth.ErrorInvalidRequest,
			Description: "malformed request body",
		})
		return
	}

	resp, err := h.engine.Exchange(r.Context(), req)
	if err != nil {
		logger.Info("Token exchange rejected",
			zap.String("client_id", req.ClientID),
			zap.String("grant_type", req.GrantType),
			zap.Error(err))
		writeOAuthError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

func parseTokenRequest(r *http.Request) (*models.TokenRequest, error) {
	var req models.TokenRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		req.GrantType = r.PostForm.Get("grant_type")
		req.Code = r.PostForm.Get("code")
		req.RedirectURI = r.PostForm.Get("redirect_uri")
		req.ClientID = r.PostForm.Get("client_id")
		req.ClientSecret = r.PostForm.Get("client_secret")
		req.CodeVerifier = r.PostForm.Get("code_verifier")
	}

	// Basic auth credentials take precedence over body parameters.
	if clientID, clientSecret, ok := r.BasicAuth(); ok {
		req.ClientID = clientID
		req.ClientSecret = clientSecret
	}

	return &req, nil
}
