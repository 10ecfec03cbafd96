package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"taskhub/internal/domain/services"
)

// maxUsernameLookups bounds concurrent calls to the auth service per request.
const maxUsernameLookups = 8

// ResolveUsernames looks up display names for ids concurrently. Ids that
// cannot be resolved are absent from the result; lookups never fail the
// caller.
func ResolveUsernames(ctx context.Context, dir services.UserDirectory, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxUsernameLookups)

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		g.Go(func() error {
			if name, ok := dir.Username(ctx, id); ok {
				mu.Lock()
				names[id] = name
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return names
}
