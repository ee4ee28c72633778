package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wildpitch/wildpitch/internal/lock"
	"github.com/wildpitch/wildpitch/internal/metrics"
)

// SessionReaper periodically sweeps expired sessions from the store.
// Expired sessions already fail to resolve; the reaper only reclaims the
// rows they leave behind.
type SessionReaper struct {
	sessions *SessionService
	locker   lock.Locker
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	interval time.Duration

	// Control
	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewSessionReaper creates a new session reaper.
func NewSessionReaper(sessions *SessionService, locker lock.Locker, m *metrics.Metrics, interval time.Duration, logger zerolog.Logger) *SessionReaper {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	return &SessionReaper{
		sessions: sessions,
		locker:   locker,
		metrics:  m,
		logger:   logger.With().Str("service", "session_reaper").Logger(),
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the sweep scheduler.
func (r *SessionReaper) Start() {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	r.logger.Info().
		Dur("interval", r.interval).
		Msg("Starting session reaper")

	go r.runLoop()
}

// Stop stops the sweep scheduler.
func (r *SessionReaper) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopChan)
	<-r.doneChan

	r.logger.Info().Msg("Session reaper stopped")
}

// runLoop is the main sweep loop.
func (r *SessionReaper) runLoop() {
	defer close(r.doneChan)

	// Run immediately on start
	r.runOnce(context.Background())

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runOnce(context.Background())
		case <-r.stopChan:
			return
		}
	}
}

// RunOnce executes a single sweep. Can be called manually (admin CLI) or
// by the scheduler.
func (r *SessionReaper) RunOnce(ctx context.Context) (int64, error) {
	return r.sweep(ctx)
}

// runOnce is called by the scheduler loop.
func (r *SessionReaper) runOnce(ctx context.Context) {
	if _, err := r.sweep(ctx); err != nil {
		r.logger.Error().Err(err).Msg("Session sweep failed")
	}
}

// sweep deletes expired sessions under a cross-instance lock so only one
// server runs the sweep per interval.
func (r *SessionReaper) sweep(ctx context.Context) (int64, error) {
	lockKey := lock.Keys.SessionPurge()
	lockTTL := r.interval / 2
	if lockTTL < time.Minute {
		lockTTL = time.Minute
	}

	acquired, err := r.locker.Acquire(ctx, lockKey, lockTTL)
	if err != nil {
		return 0, err
	}
	if !acquired {
		r.logger.Debug().Msg("Sweep lock held by another process, skipping run")
		return 0, nil
	}
	defer func() {
		if _, err := r.locker.Release(ctx, lockKey); err != nil {
			r.logger.Error().Err(err).Msg("Failed to release sweep lock")
		}
	}()

	start := time.Now()
	purged, err := r.sessions.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}

	if r.metrics != nil {
		r.metrics.RecordSessionSweep(time.Since(start).Seconds(), purged)
	}

	return purged, nil
}
