package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dialhub/callqueue/internal/repository"
)

// ReclaimWorker periodically returns expired leases to the backlog. An
// entry whose agent crashed or lost its network stays locked only until the
// lease runs out; the sweep resets it to queued with lease fields cleared,
// leaving priority and history untouched.
//
// Sweep runs the reclaim once and is exported so an external scheduler (or
// a test) can invoke it directly; the ticker loop is just a convenience.
type ReclaimWorker struct {
	queue    repository.QueueRepository
	interval time.Duration
	logger   *zap.Logger

	// onReclaimed is an optional metrics hook (nil = no-op).
	onReclaimed func(count int)
}

func NewReclaimWorker(
	queue repository.QueueRepository,
	interval time.Duration,
	logger *zap.Logger,
	onReclaimed func(count int),
) *ReclaimWorker {
	if onReclaimed == nil {
		onReclaimed = func(int) {}
	}
	return &ReclaimWorker{
		queue:       queue,
		interval:    interval,
		logger:      logger,
		onReclaimed: onReclaimed,
	}
}

// Run ticks every interval and sweeps expired leases.
// Stops cleanly when ctx is cancelled.
func (w *ReclaimWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("lease reclaim worker started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("lease reclaim worker stopping")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep reclaims every lease that expired before now. Idempotent: a
// concurrent sweep from another process finds nothing left to reclaim.
func (w *ReclaimWorker) Sweep(ctx context.Context) {
	reclaimed, err := w.queue.ReclaimExpired(ctx, time.Now().UTC())
	if err != nil {
		w.logger.Error("lease reclaim sweep error", zap.Error(err))
		return
	}
	if reclaimed > 0 {
		w.onReclaimed(reclaimed)
		w.logger.Info("reclaimed expired leases", zap.Int("count", reclaimed))
	}
}
