package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"oauth-gateway/logger"
	"oauth-gateway/store"
)

// DefaultTimeout bounds a single proxied round trip.
const DefaultTimeout = 30 * time.Second

// hopHeaders are connection-scoped headers stripped from both directions of
// the proxied exchange. The transport recomputes framing for its own hop.
var hopHeaders = []string{
	"Host",
	"Content-Length",
	"Content-Encoding",
	"Transfer-Encoding",
	"Connection",
}

// reservedExact and reservedPrefixes name the paths owned by the
// authorization server. Requests for them never reach the backend, even when
// no route is registered for them, so the backend cannot spoof OAuth
// endpoints.
var reservedExact = map[string]bool{
	"register": true,
	"token":    true,
}

var reservedPrefixes = []string{
	".well-known/",
	"oauth/",
}

// Config configures a Gateway.
type Config struct {
	// Target is the backend base URL requests are forwarded to.
	Target *url.URL

	// Tokens verifies bearer tokens on protected paths.
	Tokens store.TokenStore

	// PublicPrefixes lists path prefixes (with leading slash) that are
	// forwarded without a bearer token.
	PublicPrefixes []string

	// Timeout bounds a proxied round trip; zero means DefaultTimeout.
	Timeout time.Duration
}

// Gateway is a token-gated reverse proxy in front of a single backend.
type Gateway struct {
	target         *url.URL
	tokens         store.TokenStore
	publicPrefixes []string
	timeout        time.Duration
	proxy          *httputil.ReverseProxy
}

// New creates a Gateway for the configured backend.
func New(cfg Config) *Gateway {
	g := &Gateway{
		target:         cfg.Target,
		tokens:         cfg.Tokens,
		publicPrefixes: cfg.PublicPrefixes,
		timeout:        cfg.Timeout,
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}

	g.proxy = &httputil.ReverseProxy{
		Director:       g.direct,
		ModifyResponse: stripResponseHeaders,
		ErrorHandler:   g.backendError,
	}
	return g
}

// ServeHTTP guards the path, enforces bearer auth, then forwards the request
// verbatim to the backend.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if reservedPath(r.URL.Path) {
		writeError(w, http.StatusNotFound, "not_found", "unknown endpoint")
		return
	}

	if !g.public(r.URL.Path) {
		if !g.authorize(w, r) {
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), g.timeout)
	defer cancel()
	g.proxy.ServeHTTP(w, r.WithContext(ctx))
}

// authorize verifies the bearer token. It writes the 401 response itself and
// returns false when the request must not be forwarded.
func (g *Gateway) authorize(w http.ResponseWriter, r *http.Request) bool {
	token, ok := bearerToken(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", `Bearer resource_metadata="/.well-known/oauth-protected-resource"`)
		writeError(w, http.StatusUnauthorized, "unauthorized", "bearer token required")
		return false
	}

	if _, err := g.tokens.Verify(r.Context(), token); err != nil {
		logger.Debug("Bearer token rejected", zap.String("path", r.URL.Path), zap.Error(err))
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
		return false
	}
	return true
}

func (g *Gateway) direct(req *http.Request) {
	req.URL.Scheme = g.target.Scheme
	req.URL.Host = g.target.Host
	req.Host = g.target.Host

	for _, h := range hopHeaders {
		req.Header.Del(h)
	}
}

func (g *Gateway) backendError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Error("Backend request failed",
		zap.String("path", r.URL.Path),
		zap.String("target", g.target.String()),
		zap.Error(err))
	writeError(w, http.StatusBadGateway, "server_error", "backend unavailable")
}

func (g *Gateway) public(path string) bool {
	for _, prefix := range g.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func stripResponseHeaders(resp *http.Response) error {
	for _, h := range hopHeaders {
		resp.Header.Del(h)
	}
	return nil
}

func reservedPath(path string) bool {
	trimmed := strings.TrimPrefix(path, "/")
	if reservedExact[trimmed] {
		return true
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const scheme = "bearer "
	if len(auth) <= len(scheme) || !strings.EqualFold(auth[:len(scheme)], scheme) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(scheme):])
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": description,
	}); err != nil {
		logger.Error("Failed to encode gateway error", zap.Error(err))
	}
}
