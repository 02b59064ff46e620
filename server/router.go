package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"oauth-gateway/config"
	"oauth-gateway/gateway"
	"oauth-gateway/handlers"
	"oauth-gateway/logger"
	"oauth-gateway/oauth"
)

// NewRouter wires every route of the gateway: the OAuth endpoints, the
// discovery documents, and the catch-all reverse proxy.
func NewRouter(cfg *config.Config, engine *oauth.Engine, st *stores) (*mux.Router, error) {
	target, err := url.Parse(cfg.Backend.URL)
	if err != nil {
		return nil, err
	}

	authorizeHandler := handlers.NewOAuthAuthorizeHandler(engine)
	tokenHandler := handlers.NewOAuthTokenHandler(engine)
	clientHandler := handlers.NewOAuthClientHandler(engine)
	revokeHandler := handlers.NewOAuthRevokeHandler(engine)
	discoveryHandler := handlers.NewDiscoveryHandler(cfg.Issuer)

	proxy := gateway.New(gateway.Config{
		Target:         target,
		Tokens:         st.tokens,
		PublicPrefixes: cfg.Backend.PublicPrefixes,
		Timeout:        cfg.Backend.Timeout,
	})

	r := mux.NewRouter()
	r.Use(requestLogMiddleware)

	r.HandleFunc("/.well-known/oauth-authorization-server",
		discoveryHandler.HandleAuthorizationServerMetadata).Methods(http.MethodGet)
	r.HandleFunc("/.well-known/oauth-protected-resource",
		discoveryHandler.HandleProtectedResourceMetadata).Methods(http.MethodGet)

	r.HandleFunc("/oauth/authorize", authorizeHandler.HandleAuthorize).Methods(http.MethodGet)
	r.HandleFunc("/oauth/token", tokenHandler.HandleToken).Methods(http.MethodPost)
	r.HandleFunc("/oauth/revoke", revokeHandler.HandleRevoke).Methods(http.MethodPost)
	r.HandleFunc("/register", clientHandler.HandleRegister).Methods(http.MethodPost)

	// Alias kept for clients that expect the endpoints at the root.
	r.HandleFunc("/token", tokenHandler.HandleToken).Methods(http.MethodPost)

	r.HandleFunc("/health", handlers.HandleHealth).Methods(http.MethodGet)

	// Everything else is the backend's. The proxy re-checks reserved
	// prefixes so unregistered /oauth/* paths 404 instead of leaking
	// through.
	r.PathPrefix("/").Handler(proxy)

	return r, nil
}

// statusRecorder captures the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		logger.Info("Request handled",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
