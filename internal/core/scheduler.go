package core

// scheduler.go runs background maintenance for the service.
//
// The session janitor evicts view sessions that have not been read or
// updated within the idle TTL. It is long-running and stops when its
// context is cancelled.

import (
	"context"
	"log/slog"
	"time"
)

// SessionConfig controls session expiry.
type SessionConfig struct {
	IdleTTL       time.Duration // Evict sessions idle longer than this (default: 30m)
	CheckInterval time.Duration // How often to sweep (default: 1m)
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.IdleTTL <= 0 {
		c.IdleTTL = 30 * time.Minute
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Minute
	}
	return c
}

// StartSessionJanitor sweeps idle sessions every CheckInterval until ctx
// is cancelled. Run it in its own goroutine.
func (s *Service) StartSessionJanitor(ctx context.Context, cfg SessionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("session janitor started",
		"idle_ttl", cfg.IdleTTL.String(),
		"interval", cfg.CheckInterval.String(),
	)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			s.runJanitor(cfg)
		}
	}
}

func (s *Service) runJanitor(cfg SessionConfig) {
	start := time.Now()
	evicted := s.evictIdle(cfg.IdleTTL)
	if evicted > 0 {
		slog.Info("evicted idle sessions",
			"evicted", evicted,
			"remaining", s.SessionCount(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
