package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"taskhub/internal/domain/repositories"
)

// TokenJanitor deletes refresh tokens that can no longer be redeemed.
type TokenJanitor struct {
	tokenRepo repositories.RefreshTokenRepository
	logger    *slog.Logger
	now       func() time.Time
}

func NewTokenJanitor(tokenRepo repositories.RefreshTokenRepository, logger *slog.Logger) *TokenJanitor {
	return &TokenJanitor{
		tokenRepo: tokenRepo,
		logger:    logger.With("job", "token_purge"),
		now:       time.Now,
	}
}

// Purge removes every token that expired before now.
func (j *TokenJanitor) Purge(ctx context.Context) (int64, error) {
	n, err := j.tokenRepo.DeleteExpired(ctx, j.now())
	if err != nil {
		return 0, fmt.Errorf("purge refresh tokens: %w", err)
	}
	return n, nil
}

// Start schedules Purge on the cron spec until ctx is done.
// The returned cron is already running.
func (j *TokenJanitor) Start(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n, err := j.Purge(ctx)
		if err != nil {
			j.logger.Error("token purge failed", "error", err)
			return
		}
		j.logger.Info("token purge finished", "deleted", n)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule token purge %q: %w", spec, err)
	}

	c.Start()
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
