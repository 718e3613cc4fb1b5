package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SessionReaper is a background worker that periodically logs out idle sessions
type SessionReaper struct {
	auth     *AuthService
	logger   zerolog.Logger
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
}

// SessionReaperConfig holds configuration for the session reaper
type SessionReaperConfig struct {
	Interval time.Duration // How often to look for idle sessions
}

// DefaultSessionReaperConfig returns sensible defaults
func DefaultSessionReaperConfig() SessionReaperConfig {
	return SessionReaperConfig{
		Interval: 5 * time.Minute,
	}
}

// NewSessionReaper creates a new session reaper
func NewSessionReaper(auth *AuthService, logger zerolog.Logger, config SessionReaperConfig) *SessionReaper {
	if config.Interval <= 0 {
		config.Interval = DefaultSessionReaperConfig().Interval
	}

	return &SessionReaper{
		auth:     auth,
		logger:   logger.With().Str("component", "session_reaper").Logger(),
		interval: config.Interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep
func (w *SessionReaper) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().Dur("interval", w.interval).Msg("Starting session reaper")

	go w.run(ctx)
}

// Stop gracefully stops the reaper
func (w *SessionReaper) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.stopOnce.Do(func() {
		w.logger.Info().Msg("Stopping session reaper")
		close(w.stopCh)
	})
	<-w.doneCh
	w.logger.Info().Msg("Session reaper stopped")
}

func (w *SessionReaper) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setStopped()
			return
		case <-w.stopCh:
			w.setStopped()
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SessionReaper) sweep() {
	removed := w.auth.ReapExpired()
	if removed > 0 {
		w.logger.Info().
			Int("removed", removed).
			Int("remaining", w.auth.ActiveSessions()).
			Msg("Reaped idle sessions")
	}
}

func (w *SessionReaper) setStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// IsRunning returns whether the reaper is currently running
func (w *SessionReaper) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
