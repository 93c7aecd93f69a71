package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dialhub/callqueue/internal/domain"
	"github.com/dialhub/callqueue/internal/repository"
)

// checkpointEvery is how many records are processed between progress
// checkpoints. The checkpoint doubles as the job's liveness heartbeat.
const checkpointEvery = 25

// ValidationService runs bulk email-validation jobs over an agent's queued
// contacts. Jobs are checkpointed so a job orphaned mid-run (process crash,
// lost node) can be resumed from its last processed count, not restarted.
type ValidationService struct {
	jobs   repository.ValidationJobRepository
	queue  repository.QueueRepository
	logger *zap.Logger
}

func NewValidationService(
	jobs repository.ValidationJobRepository,
	queue repository.QueueRepository,
	logger *zap.Logger,
) *ValidationService {
	return &ValidationService{jobs: jobs, queue: queue, logger: logger}
}

// StartJob creates a pending job covering the agent's current live queue.
// The caller is expected to hand the job id to Process, typically on a
// separate goroutine.
func (s *ValidationService) StartJob(ctx context.Context, agentID, campaignID string) (*domain.ValidationJob, error) {
	if agentID == "" {
		return nil, domain.ErrInvalidAgent
	}
	if campaignID == "" {
		return nil, domain.ErrInvalidCampaign
	}

	items, err := s.queue.ListForAgent(ctx, agentID, campaignID, false)
	if err != nil {
		return nil, fmt.Errorf("list agent queue: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrJobEmpty
	}

	now := time.Now().UTC()
	job := &domain.ValidationJob{
		ID:         uuid.New().String(),
		AgentID:    agentID,
		CampaignID: campaignID,
		Status:     domain.JobPending,
		Total:      len(items),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create validation job: %w", err)
	}
	return job, nil
}

// GetJob returns a job by id.
func (s *ValidationService) GetJob(ctx context.Context, id string) (*domain.ValidationJob, error) {
	return s.jobs.GetByID(ctx, id)
}

// Process runs a job to completion, starting from its checkpoint. It is
// safe to call on a freshly created job and on one reclaimed after a crash;
// already-processed records are skipped by position.
func (s *ValidationService) Process(ctx context.Context, jobID string) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status == domain.JobCompleted || job.Status == domain.JobFailed {
		return nil
	}

	if err := s.jobs.MarkProcessing(ctx, jobID); err != nil {
		return fmt.Errorf("mark job processing: %w", err)
	}

	// The work list is re-derived from the queue, which is what makes the
	// processed-count checkpoint a sufficient resume point.
	items, err := s.queue.ListForAgent(ctx, job.AgentID, job.CampaignID, false)
	if err != nil {
		s.fail(ctx, jobID, err)
		return fmt.Errorf("list agent queue: %w", err)
	}

	invalid := 0
	processed := job.ProcessedCount
	for i := processed; i < len(items); i++ {
		select {
		case <-ctx.Done():
			// Leave the job in processing with its checkpoint intact; the
			// reclaim worker will resume it after the orphan timeout.
			return ctx.Err()
		default:
		}

		if !validEmail(items[i].ContactEmail) {
			invalid++
		}
		processed++

		if processed%checkpointEvery == 0 {
			if err := s.jobs.Checkpoint(ctx, jobID, processed); err != nil {
				s.fail(ctx, jobID, err)
				return fmt.Errorf("checkpoint job: %w", err)
			}
		}
	}

	if err := s.jobs.MarkCompleted(ctx, jobID); err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}

	s.logger.Info("validation job completed",
		zap.String("job_id", jobID),
		zap.String("agent_id", job.AgentID),
		zap.Int("processed", processed),
		zap.Int("invalid", invalid),
	)
	return nil
}

func (s *ValidationService) fail(ctx context.Context, jobID string, cause error) {
	if err := s.jobs.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		s.logger.Error("failed to mark validation job failed",
			zap.String("job_id", jobID), zap.Error(err))
	}
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}
