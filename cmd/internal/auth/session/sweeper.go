package session

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically deactivates expired sessions.
//
// It only ever moves records from active to inactive, and deactivation is
// idempotent, so it can run concurrently with any validate or invalidate
// call without coordination. Correctness does not depend on it: expiry is
// enforced lazily at validation time.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	log      *slog.Logger
}

// NewSweeper constructs a Sweeper. A non-positive interval disables it.
func NewSweeper(svc *Service, interval time.Duration, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{svc: svc, interval: interval, log: log}
}

// Run blocks, sweeping on each tick until ctx is cancelled.
func (w *Sweeper) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info("session.sweeper.disabled")
		return
	}

	t := time.NewTicker(w.interval)
	defer t.Stop()

	w.log.Info("session.sweeper.start", "interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			w.log.Info("session.sweeper.stop")
			return
		case <-t.C:
			n, err := w.svc.SweepExpired(ctx, time.Now().UTC())
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.log.Error("session.sweep.fail", "err", err)
				continue
			}
			if n > 0 {
				w.log.Info("session.sweep", "deactivated", n)
			}
		}
	}
}
