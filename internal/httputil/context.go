package httputil

import (
	"context"
	"net/http"
)

// Caller is the authenticated subject of a request.
type Caller struct {
	UserID   string
	Username string
	Roles    []string
}

type callerKey struct{}

// WithCaller attaches the verified caller to the request.
func WithCaller(r *http.Request, c Caller) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), callerKey{}, c))
}

// CallerFrom returns the caller; ok is false on unauthenticated routes.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

// GetUserID returns the caller's user id, or "" when there is none.
func GetUserID(r *http.Request) string {
	c, _ := CallerFrom(r.Context())
	return c.UserID
}

func GetUsername(r *http.Request) string {
	c, _ := CallerFrom(r.Context())
	return c.Username
}
