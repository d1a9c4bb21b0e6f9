package core

// scheduler.go runs background maintenance for the Service.
//
// The session janitor closes workbook sessions that have been idle longer
// than their TTL, so abandoned uploads do not pin memory. It is context-aware
// for graceful shutdown and never fails the application.

import (
	"context"
	"log/slog"
	"time"
)

// JanitorConfig holds configuration for the session janitor.
type JanitorConfig struct {
	TTL           time.Duration // Idle time before a session is closed (default: 30m)
	CheckInterval time.Duration // How often to sweep (default: 1m)
}

func (c JanitorConfig) withDefaults() JanitorConfig {
	if c.TTL <= 0 {
		c.TTL = 30 * time.Minute
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Minute
	}
	return c
}

// StartSessionJanitor sweeps idle sessions every CheckInterval until ctx is cancelled.
func (s *Service) StartSessionJanitor(ctx context.Context, cfg JanitorConfig) {
	cfg = cfg.withDefaults()
	slog.Info("session janitor started",
		"ttl", cfg.TTL.String(),
		"interval", cfg.CheckInterval.String(),
	)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case now := <-ticker.C:
			s.runSweep(now, cfg.TTL)
		}
	}
}

func (s *Service) runSweep(now time.Time, ttl time.Duration) {
	closed := s.SweepIdle(now, ttl)
	if closed > 0 {
		slog.Info("closed idle sessions", "closed", closed, "open", s.SessionCount())
		return
	}
	slog.Debug("session sweep completed", "open", s.SessionCount())
}
