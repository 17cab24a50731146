// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/propertyflow/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// InactiveCloser closes activity sessions idle longer than a threshold.
// *sessions.Store implements it.
type InactiveCloser interface {
	CloseInactive(ctx context.Context, threshold time.Duration) (int64, error)
}

// SessionCleanup periodically closes inactive activity sessions.
type SessionCleanup struct {
	sessions          InactiveCloser
	log               *zap.Logger
	interval          time.Duration
	inactiveThreshold time.Duration
	stopCh            chan struct{}
	stopOnce          sync.Once
	wg                sync.WaitGroup
}

// NewSessionCleanup creates the worker. interval is how often it runs;
// inactiveThreshold is how long a session may be idle before it is closed.
// Non-positive values fall back to 5m and 30m.
func NewSessionCleanup(store InactiveCloser, logger *zap.Logger, interval, inactiveThreshold time.Duration) *SessionCleanup {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if inactiveThreshold <= 0 {
		inactiveThreshold = 30 * time.Minute
	}
	return &SessionCleanup{
		sessions:          store,
		log:               logger,
		interval:          interval,
		inactiveThreshold: inactiveThreshold,
		stopCh:            make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *SessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("inactive_threshold", w.inactiveThreshold))
}

// Stop signals the loop and waits for it. Safe to call more than once.
func (w *SessionCleanup) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("session cleanup worker stopped")
	})
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single cleanup pass.
func (w *SessionCleanup) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()

	count, err := w.sessions.CloseInactive(ctx, w.inactiveThreshold)
	if err != nil {
		w.log.Error("failed to close inactive sessions", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("closed inactive sessions", zap.Int64("count", count))
	}
}
