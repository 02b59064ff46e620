package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"oauth-gateway/logger"
	"oauth-gateway/oauth"
)

// writeJSON writes v as a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeOAuthError renders err according to its kind: a *oauth.RedirectError
// becomes a 302 back to the client's redirect URI, a *oauth.Error becomes a
// JSON error body with its status, and anything else becomes a generic 500.
func writeOAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var redirectErr *oauth.RedirectError
	if errors.As(err, &redirectErr) {
		http.Redirect(w, r, redirectErr.RedirectURL, http.StatusFound)
		return
	}

	var oauthErr *oauth.Error
	if errors.As(err, &oauthErr) {
		writeJSON(w, oauthErr.Status, oauthErr)
		return
	}

	logger.Error("Unclassified handler error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, &oauth.Error{
		Code:        oauth.ErrorServerError,
		Description: "internal server error",
	})
}
