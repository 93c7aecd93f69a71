package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dialhub/callqueue/internal/domain"
)

type pgValidationJobRepository struct {
	pool *pgxpool.Pool
}

// NewPgValidationJobRepository returns a ValidationJobRepository backed by
// PostgreSQL.
func NewPgValidationJobRepository(pool *pgxpool.Pool) ValidationJobRepository {
	return &pgValidationJobRepository{pool: pool}
}

func (r *pgValidationJobRepository) Create(ctx context.Context, job *domain.ValidationJob) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO validation_jobs
			(id, agent_id, campaign_id, status, total, processed_count, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		job.ID, job.AgentID, job.CampaignID, job.Status, job.Total, job.ProcessedCount,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert validation job: %w", err)
	}
	return nil
}

func (r *pgValidationJobRepository) GetByID(ctx context.Context, id string) (*domain.ValidationJob, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, agent_id, campaign_id, status, total, processed_count, error_message,
		       created_at, updated_at
		FROM validation_jobs WHERE id = $1`, id)

	j, err := scanValidationJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return j, err
}

func (r *pgValidationJobRepository) MarkProcessing(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE validation_jobs
		SET status = 'processing', updated_at = now()
		WHERE id = $1`, id)
	return err
}

func (r *pgValidationJobRepository) Checkpoint(ctx context.Context, id string, processed int) error {
	// updated_at is the heartbeat; a job that stops checkpointing is
	// eventually treated as orphaned.
	_, err := r.pool.Exec(ctx, `
		UPDATE validation_jobs
		SET processed_count = $1, updated_at = now()
		WHERE id = $2`, processed, id)
	return err
}

func (r *pgValidationJobRepository) MarkCompleted(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE validation_jobs
		SET status = 'completed', processed_count = total, updated_at = now()
		WHERE id = $1`, id)
	return err
}

func (r *pgValidationJobRepository) MarkFailed(ctx context.Context, id, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE validation_jobs
		SET status = 'failed', error_message = $1, updated_at = now()
		WHERE id = $2`, errMsg, id)
	return err
}

func (r *pgValidationJobRepository) FindOrphaned(ctx context.Context, cutoff time.Time) ([]*domain.ValidationJob, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, agent_id, campaign_id, status, total, processed_count, error_message,
		       created_at, updated_at
		FROM validation_jobs
		WHERE status = 'processing' AND updated_at <= $1
		LIMIT 100`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("find orphaned jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.ValidationJob
	for rows.Next() {
		j, err := scanValidationJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func scanValidationJob(row pgx.Row) (*domain.ValidationJob, error) {
	var j domain.ValidationJob
	err := row.Scan(
		&j.ID, &j.AgentID, &j.CampaignID, &j.Status, &j.Total, &j.ProcessedCount,
		&j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}
