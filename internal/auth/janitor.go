package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/blogosphere/blogd/internal/metrics"
)

// SpentDeleter removes token rows that can never validate again.
// Implemented by repository.TokensRepository.
type SpentDeleter interface {
	DeleteSpent(ctx context.Context) (int64, error)
}

// Janitor sweeps expired and consumed token rows. Sweeping races benignly
// with issuance: a freshly issued row is committed before the sweep can see
// it, and a swept row was already unusable.
type Janitor struct {
	tokens SpentDeleter
	logger *slog.Logger
}

// NewJanitor creates a new janitor.
func NewJanitor(tokens SpentDeleter, logger *slog.Logger) *Janitor {
	return &Janitor{tokens: tokens, logger: logger}
}

// Sweep deletes every inactive or expired row and returns the count.
// Idempotent.
func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	count, err := j.tokens.DeleteSpent(ctx)
	if err != nil {
		return 0, err
	}
	metrics.TokensSwept.Add(float64(count))
	j.logger.Info("swept spent tokens", "count", count)
	return count, nil
}

// Run sweeps on the given interval until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.Error("token sweep failed", "error", err)
			}
		}
	}
}
