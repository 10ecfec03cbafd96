package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"taskhub/internal/auth"
	"taskhub/internal/httputil"
	"taskhub/internal/relay"
)

// AuthMiddleware validates the bearer token on every request except the
// public routes, and stores the caller's identity in the request context.
// The raw Authorization header is kept too so relayed checks can forward it.
func AuthMiddleware(verifier auth.TokenVerifier, logger *slog.Logger, publicPaths ...string) func(http.Handler) http.Handler {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[r.URL.Path]; ok || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			r = httputil.WithCaller(r, httputil.Caller{
				UserID:   claims.GetUserID(),
				Username: claims.Username,
				Roles:    claims.Roles,
			})
			r = r.WithContext(relay.WithAuthorization(r.Context(), header))

			next.ServeHTTP(w, r)
		})
	}
}
