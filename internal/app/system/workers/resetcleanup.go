// internal/app/system/workers/resetcleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ResetClearer removes password-reset OTPs and tokens that expired before now.
type ResetClearer interface {
	ClearExpiredResets(ctx context.Context, now time.Time) (int64, error)
}

// ResetCleanup is a background worker that clears expired password-reset
// state from user documents.
type ResetCleanup struct {
	users    ResetClearer
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewResetCleanup creates a new reset cleanup worker.
//
// Parameters:
//   - users: the users store
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 5 minutes)
func NewResetCleanup(users ResetClearer, logger *zap.Logger, interval time.Duration) *ResetCleanup {
	return &ResetCleanup{
		users:    users,
		log:      logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *ResetCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("reset cleanup worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *ResetCleanup) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("reset cleanup worker stopped")
}

func (w *ResetCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *ResetCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.users.ClearExpiredResets(ctx, w.now())
	if err != nil {
		w.log.Error("failed to clear expired password resets", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("cleared expired password resets", zap.Int64("count", count))
	}
}
