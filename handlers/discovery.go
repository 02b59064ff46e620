package handlers

import (
	"net/http"

	"oauth-gateway/models"
)

// DiscoveryHandler serves the RFC 8414 authorization server metadata and the
// RFC 9728 protected resource metadata documents.
type DiscoveryHandler struct {
	// issuer is the configured external URL of this server. When empty the
	// issuer is derived from the incoming request.
	issuer string
}

// NewDiscoveryHandler creates a new discovery handler. issuer may be empty.
func NewDiscoveryHandler(issuer string) *DiscoveryHandler {
	return &DiscoveryHandler{issuer: issuer}
}

// HandleAuthorizationServerMetadata handles
// GET /.well-known/oauth-authorization-server.
func (h *DiscoveryHandler) HandleAuthorizationServerMetadata(w http.ResponseWriter, r *http.Request) {
	issuer := h.resolveIssuer(r)
	doc := &models.AuthorizationServerMetadata{
		Issuer:                            issuer,
		AuthorizationEndpoint:             issuer + "/oauth/authorize",
		TokenEndpoint:                     issuer + "/oauth/token",
		RegistrationEndpoint:              issuer + "/register",
		RevocationEndpoint:                issuer + "/oauth/revoke",
		GrantTypesSupported:               []string{"authorization_code"},
		ResponseTypesSupported:            []string{"code"},
		CodeChallengeMethodsSupported:     []string{"S256"},
		TokenEndpointAuthMethodsSupported: []string{"client_secret_basic", "client_secret_post", "none"},
	}

	writeDiscovery(w, doc)
}

// HandleProtectedResourceMetadata handles
// GET /.well-known/oauth-protected-resource.
func (h *DiscoveryHandler) HandleProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	issuer := h.resolveIssuer(r)
	doc := &models.ProtectedResourceMetadata{
		Resource:             issuer,
		AuthorizationServers: []string{issuer},
	}

	writeDiscovery(w, doc)
}

func (h *DiscoveryHandler) resolveIssuer(r *http.Request) string {
	if h.issuer != "" {
		return h.issuer
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func writeDiscovery(w http.ResponseWriter, doc any) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	writeJSON(w, http.StatusOK, doc)
}
