package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"oauth-gateway/config"
	"oauth-gateway/logger"
	"oauth-gateway/oauth"
)

// StartServer runs the gateway until SIGINT or SIGTERM, then drains in-flight
// requests before returning.
func StartServer(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger.Init(logger.Config{Debug: cfg.Debug})
	defer logger.Sync()

	logger.Info("Starting OAuth gateway",
		zap.String("addr", cfg.Addr()),
		zap.String("backend", cfg.Backend.URL),
		zap.String("storage", cfg.Storage.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStores(ctx, &cfg.Storage)
	if err != nil {
		return err
	}
	defer st.Close()

	engine := oauth.NewEngine(oauth.Config{
		Clients:  st.clients,
		Codes:    st.codes,
		Tokens:   st.tokens,
		CodeTTL:  cfg.OAuth.CodeTTL,
		TokenTTL: cfg.OAuth.TokenTTL,
		Subject:  cfg.OAuth.Subject,
	})

	router, err := NewRouter(cfg, engine, st)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
