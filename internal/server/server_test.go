package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/auth"
	"taskhub/internal/config"
	"taskhub/internal/domain/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Service:     config.ServiceTask,
		Port:        "0",
		CORSOrigins: "http://localhost:5173",
		JWTSecret:   "0123456789abcdef0123456789abcdef",
		JWTIssuer:   "taskhub-auth",
		JWTAudience: "taskhub",
	}
}

func TestNewVerifierUsesSharedSecret(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v, err := NewVerifier(context.Background(), testConfig(), logger)
	require.NoError(t, err)
	defer v.Close()

	_, ok := v.(*auth.TokenIssuer)
	assert.True(t, ok)
}

func TestNewHandlerChain(t *testing.T) {
	cfg := testConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, time.Minute, logger)
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /api/panic", func(w http.ResponseWriter, r *http.Request) { panic("boom") })

	h := NewHandler(mux, cfg, issuer, logger)

	token, err := issuer.Issue(&models.User{ID: "u-1", Username: "ada"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		auth   bool
		want   int
	}{
		{"health is public", http.MethodGet, "/health", false, http.StatusOK},
		{"api needs token", http.MethodGet, "/api/tasks", false, http.StatusUnauthorized},
		{"api with token", http.MethodGet, "/api/tasks", true, http.StatusOK},
		{"panic recovered", http.MethodGet, "/api/panic", true, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, testConfig(), http.NewServeMux(), logger)
	assert.NoError(t, err)
}
