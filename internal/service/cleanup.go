package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CleanupWorker reaps expired sessions on a fixed interval. A failed sweep
// is logged and retried on the next tick; it never brings the process down.
type CleanupWorker struct {
	sessions *SessionService
	log      *zap.SugaredLogger
	interval time.Duration
}

func NewCleanupWorker(sessions *SessionService, interval time.Duration, log *zap.SugaredLogger) *CleanupWorker {
	return &CleanupWorker{
		sessions: sessions,
		log:      log,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled. Call it from its own goroutine.
func (w *CleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Infof("session cleanup running every %s", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("session cleanup stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *CleanupWorker) sweep(ctx context.Context) {
	count, err := w.sessions.CleanupExpiredSessions(ctx)
	if err != nil {
		w.log.Errorw("session cleanup sweep failed", "error", err)
		return
	}
	if count > 0 {
		w.log.Infow("reaped expired sessions", "count", count)
	}
}
