package relay

import "context"

type contextKey struct{}

// WithAuthorization stores the caller's Authorization header value so
// outbound checks can forward it unchanged.
func WithAuthorization(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, contextKey{}, header)
}

// AuthorizationFrom returns the stored header, or "" when absent.
func AuthorizationFrom(ctx context.Context) string {
	header, _ := ctx.Value(contextKey{}).(string)
	return header
}
