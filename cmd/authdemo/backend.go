// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDemo Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/authdemo/authdemo/internal/config"
	"github.com/authdemo/authdemo/internal/session"
	"github.com/authdemo/authdemo/internal/session/postgres"
)

// Connect retry bounds for session backends.
const (
	connectBaseDelay = 200 * time.Millisecond
	connectMaxDelay  = 5 * time.Second
)

// connectBackoff returns the backoff used while a session backend comes up.
func connectBackoff(attempts int) retry.Backoff {
	b := retry.NewExponential(connectBaseDelay)
	b = retry.WithCappedDuration(connectMaxDelay, b)
	if attempts > 1 {
		return retry.WithMaxRetries(uint64(attempts-1), b)
	}
	return retry.WithMaxRetries(0, b)
}

// withRetry runs ping until it succeeds or the attempts are used up. Every
// failure is treated as transient.
func withRetry(ctx context.Context, attempts int, backend string, ping func(context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, connectBackoff(attempts), func(ctx context.Context) error {
		attempt++
		if err := ping(ctx); err != nil {
			slog.Warn("session backend not reachable yet",
				"backend", backend,
				"attempt", attempt,
				"error", err,
			)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// openStorage opens the configured session backend, retrying the initial
// connection with bounded exponential backoff.
func openStorage(ctx context.Context, cfg config.SessionConfig) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return &Backend{Storage: session.NewMemoryStorage(), Close: func() {}}, nil

	case config.BackendRedis:
		client, err := session.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		storage := session.NewRedisStorage(client, cfg.TTL)
		if err := withRetry(ctx, cfg.ConnectAttempts, config.BackendRedis, storage.Ping); err != nil {
			_ = client.Close()
			return nil, oops.Code("SESSION_BACKEND_UNAVAILABLE").With("backend", config.BackendRedis).Wrap(err)
		}
		return &Backend{
			Storage: storage,
			Close:   func() { _ = client.Close() },
		}, nil

	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		storage := postgres.NewStorage(pool)
		if err := withRetry(ctx, cfg.ConnectAttempts, config.BackendPostgres, storage.Ping); err != nil {
			pool.Close()
			return nil, oops.Code("SESSION_BACKEND_UNAVAILABLE").With("backend", config.BackendPostgres).Wrap(err)
		}
		backend := &Backend{Storage: storage, Close: pool.Close}
		if ttl := cfg.TTL; ttl > 0 {
			backend.Sweep = func(ctx context.Context) (int64, error) {
				return storage.DeleteStale(ctx, time.Now().Add(-ttl))
			}
		}
		return backend, nil

	default:
		return nil, oops.Code("CONFIG_INVALID").With("backend", cfg.Backend).Errorf("unknown session backend %q", cfg.Backend)
	}
}

// runSweeper calls sweep every interval until ctx is done.
func runSweeper(ctx context.Context, interval time.Duration, sweep func(context.Context) (int64, error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sweep(ctx)
			if err != nil {
				slog.Warn("stale session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("removed stale sessions", "count", n)
			}
		}
	}
}

// sweepInterval derives how often stale sessions are removed from their TTL.
func sweepInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, time.Minute)
}
