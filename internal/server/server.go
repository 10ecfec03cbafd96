// Package server holds the bootstrap shared by the three service binaries:
// token verifier selection, the middleware chain and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"

	"taskhub/internal/auth"
	"taskhub/internal/config"
	"taskhub/internal/middleware"
	"taskhub/internal/observability"
)

const shutdownTimeout = 10 * time.Second

// NewVerifier returns a JWKS verifier when JWT_JWKS_URL is configured and
// the shared-secret verifier otherwise.
func NewVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (auth.TokenVerifier, error) {
	if cfg.JWTJWKSURL != "" {
		return auth.NewJWKSVerifier(ctx, cfg.JWTJWKSURL, cfg.JWTIssuer, cfg.JWTAudience, logger)
	}
	return auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL, logger)
}

// RegisterOps adds /health and /metrics to mux
func RegisterOps(mux *http.ServeMux, registry *prometheus.Registry, health *observability.HealthChecker) {
	mux.Handle("GET /health", health)
	observability.RegisterMetricsEndpoint(mux, registry)
}

// NewHandler builds the middleware chain around mux.
// Order: CORS → Recovery → Auth → Routes
func NewHandler(mux http.Handler, cfg *config.Config, verifier auth.TokenVerifier, logger *slog.Logger, publicPaths ...string) http.Handler {
	public := append([]string{"/health", "/metrics"}, publicPaths...)

	var handler http.Handler = mux
	handler = middleware.AuthMiddleware(verifier, logger, public...)(handler)
	handler = middleware.Recovery(logger)(handler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	return corsHandler.Handler(handler)
}

// Run serves handler on cfg.Port until ctx is cancelled, then drains
// in-flight requests.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
