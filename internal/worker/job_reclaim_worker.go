package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dialhub/callqueue/internal/repository"
	"github.com/dialhub/callqueue/internal/service"
)

// JobReclaimWorker resumes bulk validation jobs left in "processing" with no
// heartbeat past the orphan timeout, typically after a process restart.
// Resumed jobs continue from their last checkpointed processed count.
type JobReclaimWorker struct {
	jobs          repository.ValidationJobRepository
	svc           *service.ValidationService
	interval      time.Duration
	orphanTimeout time.Duration
	logger        *zap.Logger
}

func NewJobReclaimWorker(
	jobs repository.ValidationJobRepository,
	svc *service.ValidationService,
	interval, orphanTimeout time.Duration,
	logger *zap.Logger,
) *JobReclaimWorker {
	return &JobReclaimWorker{
		jobs:          jobs,
		svc:           svc,
		interval:      interval,
		orphanTimeout: orphanTimeout,
		logger:        logger,
	}
}

// Run ticks every interval and resumes any orphaned jobs.
// Stops cleanly when ctx is cancelled.
func (w *JobReclaimWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("job reclaim worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("orphan_timeout", w.orphanTimeout))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("job reclaim worker stopping")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep finds orphaned jobs and resumes each one inline. Jobs are few and
// resume work is bounded, so sequential processing keeps this simple.
func (w *JobReclaimWorker) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-w.orphanTimeout)
	orphaned, err := w.jobs.FindOrphaned(ctx, cutoff)
	if err != nil {
		w.logger.Error("orphaned job scan error", zap.Error(err))
		return
	}

	for _, job := range orphaned {
		w.logger.Info("resuming orphaned validation job",
			zap.String("job_id", job.ID),
			zap.Int("checkpoint", job.ProcessedCount),
			zap.Int("total", job.Total))

		if err := w.svc.Process(ctx, job.ID); err != nil {
			w.logger.Error("failed to resume validation job",
				zap.String("job_id", job.ID), zap.Error(err))
		}
	}
}
