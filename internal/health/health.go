// Package health detects a cold-starting backend. Free-tier hosts put the
// API to sleep; the first request then fails or answers 503 for a while.
// The watcher polls the liveness endpoint until it answers so the UI can
// show "service starting" with automatic recovery instead of a hard error.
package health

import (
	"context"
	"time"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/logger"
)

// Prober issues one liveness probe.
type Prober interface {
	Health(ctx context.Context) error
}

type Watcher struct {
	prober   Prober
	interval time.Duration
	onUp     func()
}

// New creates a watcher that calls onUp once the backend answers the
// liveness probe.
func New(prober Prober, interval time.Duration, onUp func()) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{prober: prober, interval: interval, onUp: onUp}
}

// Watch polls until the backend is healthy or ctx is done. It probes once
// immediately, then on every tick.
func (w *Watcher) Watch(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Log.Info("watching backend health", "interval", w.interval)
	for {
		err := w.prober.Health(ctx)
		if err == nil {
			logger.Log.Info("backend is up")
			if w.onUp != nil {
				w.onUp()
			}
			return
		}
		logger.Log.Debug("backend still unavailable", "error", err)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
