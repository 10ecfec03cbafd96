package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/domain/models"
)

type failingPurgeRepo struct {
	fakeTokenRepo
}

func (r *failingPurgeRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, errors.New("connection refused")
}

func seedTokens(t *testing.T, repo *fakeTokenRepo, now time.Time) {
	t.Helper()
	for id, exp := range map[string]time.Time{
		"stale-1": now.Add(-48 * time.Hour),
		"stale-2": now.Add(-time.Minute),
		"live":    now.Add(time.Hour),
	} {
		require.NoError(t, repo.Create(context.Background(), &models.RefreshToken{
			ID:        id,
			UserID:    "u-1",
			TokenHash: "hash-" + id,
			FamilyID:  "fam",
			IssuedAt:  exp.Add(-time.Hour),
			ExpiresAt: exp,
		}))
	}
}

func TestTokenJanitorPurge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeTokenRepo{tokens: map[string]*models.RefreshToken{}}
	seedTokens(t, repo, now)

	j := NewTokenJanitor(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	j.now = func() time.Time { return now }

	n, err := j.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Len(t, repo.tokens, 1)
	assert.Contains(t, repo.tokens, "live")

	n, err = j.Purge(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTokenJanitorPurgeError(t *testing.T) {
	j := NewTokenJanitor(&failingPurgeRepo{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := j.Purge(context.Background())
	assert.ErrorContains(t, err, "purge refresh tokens")
}

func TestTokenJanitorStart(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("rejects bad schedule", func(t *testing.T) {
		j := NewTokenJanitor(&fakeTokenRepo{tokens: map[string]*models.RefreshToken{}}, logger)
		_, err := j.Start(context.Background(), "every tuesday")
		assert.Error(t, err)
	})

	t.Run("runs on schedule", func(t *testing.T) {
		repo := &fakeTokenRepo{tokens: map[string]*models.RefreshToken{}}
		seedTokens(t, repo, time.Now())
		j := NewTokenJanitor(repo, logger)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		c, err := j.Start(ctx, "@every 1s")
		require.NoError(t, err)
		require.Len(t, c.Entries(), 1)

		assert.Eventually(t, func() bool {
			repo.mu.Lock()
			defer repo.mu.Unlock()
			return len(repo.tokens) == 1
		}, 5*time.Second, 50*time.Millisecond)
	})
}
