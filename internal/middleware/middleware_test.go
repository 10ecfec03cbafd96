package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/httputil"
	"taskhub/internal/relay"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(token string) (*models.AccessClaims, error) {
	if token != "good" {
		return nil, domain.ErrUnauthorized
	}
	claims := &models.AccessClaims{Username: "alice"}
	claims.Subject = "u-1"
	return claims, nil
}

func (stubVerifier) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthMiddleware(t *testing.T) {
	var gotUser, gotName, gotHeader string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httputil.GetUserID(r)
		gotName = httputil.GetUsername(r)
		gotHeader = relay.AuthorizationFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := AuthMiddleware(stubVerifier{}, testLogger(), "/health")(next)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"valid token", "/api/tasks", "Bearer good", http.StatusNoContent},
		{"lowercase scheme", "/api/tasks", "bearer good", http.StatusNoContent},
		{"missing header", "/api/tasks", "", http.StatusUnauthorized},
		{"wrong scheme", "/api/tasks", "Basic good", http.StatusUnauthorized},
		{"bad token", "/api/tasks", "Bearer bad", http.StatusUnauthorized},
		{"public path", "/health", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser, gotName, gotHeader = "", "", ""
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent && tt.header != "" {
				assert.Equal(t, "u-1", gotUser)
				assert.Equal(t, "alice", gotName)
				assert.Equal(t, tt.header, gotHeader)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}
