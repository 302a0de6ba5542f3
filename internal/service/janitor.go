package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/chatkit/chatauth/internal/repository"
)

// Janitor deletes signups that were never verified.
type Janitor struct {
	userRepository repository.UserRepository
	interval       time.Duration
	retention      time.Duration
	now            func() time.Time
}

func NewJanitor(userRepository repository.UserRepository, interval, retention time.Duration) *Janitor {
	return &Janitor{
		userRepository: userRepository,
		interval:       interval,
		retention:      retention,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		_, err := j.Sweep(ctx)
		if err != nil && ctx.Err() == nil {
			slog.Error("janitor sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sweep purges unverified users whose link expired more than retention ago.
func (j *Janitor) Sweep(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.retention)

	n, err := j.userRepository.PurgeUnverified(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("purged unverified users", "count", n)
	}
	return n, nil
}
