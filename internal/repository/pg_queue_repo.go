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

const queueEntryColumns = `
	id, campaign_id, contact_id, account_id, agent_id, state,
	locked_by, locked_at, lock_expires_at, lock_version,
	priority, scheduled_for, removed_reason, created_at, updated_at`

type pgQueueRepository struct {
	pool *pgxpool.Pool
}

// NewPgQueueRepository returns a QueueRepository backed by PostgreSQL.
func NewPgQueueRepository(pool *pgxpool.Pool) QueueRepository {
	return &pgQueueRepository{pool: pool}
}

func (r *pgQueueRepository) InsertEntries(ctx context.Context, entries []*domain.QueueEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	inserted := 0
	for _, e := range entries {
		// The partial unique index on (campaign_id, contact_id) over the
		// non-terminal states makes this a no-op when a live entry already
		// exists, which is exactly the benign-race behaviour populate needs.
		tag, err := tx.Exec(ctx, `
			INSERT INTO queue_entries
				(id, campaign_id, contact_id, account_id, agent_id, state,
				 lock_version, priority, scheduled_for, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (campaign_id, contact_id)
				WHERE state IN ('queued','locked','in_progress')
			DO NOTHING`,
			e.ID, e.CampaignID, e.ContactID, e.AccountID, e.AgentID, e.State,
			e.LockVersion, e.Priority, e.ScheduledFor, e.CreatedAt, e.UpdatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("insert queue entry: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit populate batch: %w", err)
	}
	return inserted, nil
}

func (r *pgQueueRepository) ActiveContactIDs(ctx context.Context, campaignID string, contactIDs []string) ([]string, error) {
	if len(contactIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT contact_id FROM queue_entries
		WHERE campaign_id = $1
		  AND contact_id = ANY($2)
		  AND state IN ('queued','locked','in_progress')`,
		campaignID, contactIDs)
	if err != nil {
		return nil, fmt.Errorf("active contact ids: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// PullNext is the race-free dequeue: one transaction selects the best
// visible candidate with FOR UPDATE SKIP LOCKED (a row held by a concurrent
// pull is simply invisible, never waited on) and then performs the lease
// write guarded by state and lock_version. The version guard is what turns
// the read-then-write into a compare-and-swap: if anything mutated the row
// between the two statements, the update affects zero rows and the pull
// reports a miss instead of double-leasing.
func (r *pgQueueRepository) PullNext(ctx context.Context, agentID, campaignID string, lease time.Duration) (*domain.QueueEntry, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("begin pull: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var id string
	var version int
	err = tx.QueryRow(ctx, `
		SELECT id, lock_version FROM queue_entries
		WHERE agent_id = $1
		  AND campaign_id = $2
		  AND state = 'queued'
		  AND (scheduled_for IS NULL OR scheduled_for <= now())
		ORDER BY priority DESC, created_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT 1`, agentID, campaignID).Scan(&id, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = tx.Commit(ctx)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select pull candidate: %w", err)
	}

	now := time.Now().UTC()
	row := tx.QueryRow(ctx, `
		UPDATE queue_entries
		SET state = 'locked',
		    locked_by = $1,
		    locked_at = $2,
		    lock_expires_at = $3,
		    lock_version = lock_version + 1,
		    updated_at = $2
		WHERE id = $4
		  AND state = 'queued'
		  AND lock_version = $5
		RETURNING `+queueEntryColumns,
		agentID, now, now.Add(lease), id, version)

	entry, err := scanQueueEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the version race; this round is a miss.
		_ = tx.Commit(ctx)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lease pull candidate: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit pull: %w", err)
	}
	return entry, true, nil
}

func (r *pgQueueRepository) MarkInProgress(ctx context.Context, entryID, agentID string) error {
	return r.ownedUpdate(ctx, `
		UPDATE queue_entries
		SET state = 'in_progress', updated_at = now()
		WHERE id = $1 AND locked_by = $2 AND state IN ('locked','in_progress')`,
		entryID, agentID)
}

func (r *pgQueueRepository) MarkCompleted(ctx context.Context, entryID, agentID string) error {
	return r.ownedUpdate(ctx, `
		UPDATE queue_entries
		SET state = 'completed',
		    locked_by = NULL, locked_at = NULL, lock_expires_at = NULL,
		    updated_at = now()
		WHERE id = $1 AND locked_by = $2 AND state IN ('locked','in_progress')`,
		entryID, agentID)
}

func (r *pgQueueRepository) Remove(ctx context.Context, entryID, agentID, reason string) error {
	return r.ownedUpdate(ctx, `
		UPDATE queue_entries
		SET state = 'removed', removed_reason = $3,
		    locked_by = NULL, locked_at = NULL, lock_expires_at = NULL,
		    updated_at = now()
		WHERE id = $1 AND locked_by = $2 AND state IN ('locked','in_progress')`,
		entryID, agentID, reason)
}

func (r *pgQueueRepository) ReleaseLock(ctx context.Context, entryID, agentID string) error {
	return r.ownedUpdate(ctx, `
		UPDATE queue_entries
		SET state = 'queued',
		    locked_by = NULL, locked_at = NULL, lock_expires_at = NULL,
		    updated_at = now()
		WHERE id = $1 AND locked_by = $2 AND state IN ('locked','in_progress')`,
		entryID, agentID)
}

// ownedUpdate runs a lifecycle transition scoped by lease ownership.
// Zero rows affected means the caller's lease is gone (expired and
// reclaimed, or never held), surfaced as ErrLeaseLost.
func (r *pgQueueRepository) ownedUpdate(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("queue entry update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeaseLost
	}
	return nil
}

func (r *pgQueueRepository) BoostPriority(ctx context.Context, entryID string, boost int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE queue_entries
		SET priority = priority + $1, updated_at = now()
		WHERE id = $2`, boost, entryID)
	if err != nil {
		return fmt.Errorf("boost priority: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pgQueueRepository) ReclaimExpired(ctx context.Context, now time.Time) (int, error) {
	// Priority and history are left untouched: the entry simply becomes
	// visible to the dispatcher again. The dispossessed agent finds out via
	// ErrLeaseLost on its next lifecycle call.
	tag, err := r.pool.Exec(ctx, `
		UPDATE queue_entries
		SET state = 'queued',
		    locked_by = NULL, locked_at = NULL, lock_expires_at = NULL,
		    updated_at = now()
		WHERE state = 'locked' AND lock_expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("reclaim expired leases: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *pgQueueRepository) GetByID(ctx context.Context, entryID string) (*domain.QueueEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+queueEntryColumns+`
		FROM queue_entries WHERE id = $1`, entryID)

	entry, err := scanQueueEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return entry, err
}

func (r *pgQueueRepository) Stats(ctx context.Context, agentID, campaignID string) (*domain.QueueStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT state, COUNT(*) FROM queue_entries
		WHERE agent_id = $1 AND campaign_id = $2
		GROUP BY state`, agentID, campaignID)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.QueueStats{}
	for rows.Next() {
		var state domain.QueueState
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		switch state {
		case domain.StateQueued:
			stats.Queued = count
		case domain.StateLocked:
			stats.Locked = count
		case domain.StateInProgress:
			stats.InProgress = count
		case domain.StateCompleted:
			stats.Completed = count
		case domain.StateRemoved:
			stats.Removed = count
		}
	}
	return stats, rows.Err()
}

func (r *pgQueueRepository) ClearCompleted(ctx context.Context, agentID, campaignID string) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM queue_entries
		WHERE agent_id = $1 AND campaign_id = $2 AND state = 'completed'`,
		agentID, campaignID)
	if err != nil {
		return 0, fmt.Errorf("clear completed entries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *pgQueueRepository) ListForAgent(ctx context.Context, agentID, campaignID string, includeCompleted bool) ([]*domain.AgentQueueItem, error) {
	query := `
		SELECT q.id, q.campaign_id, q.contact_id, q.account_id, q.agent_id, q.state,
		       q.locked_by, q.locked_at, q.lock_expires_at, q.lock_version,
		       q.priority, q.scheduled_for, q.removed_reason, q.created_at, q.updated_at,
		       COALESCE(c.email, ''),
		       COALESCE(c.direct_phone_e164, c.mobile_phone_e164, ''),
		       COALESCE(c.country, ''),
		       COALESCE(a.name, ''),
		       COALESCE(a.domain, '')
		FROM queue_entries q
		JOIN contacts c ON c.id = q.contact_id
		JOIN accounts a ON a.id = q.account_id
		WHERE q.agent_id = $1 AND q.campaign_id = $2`
	if !includeCompleted {
		query += ` AND q.state NOT IN ('completed','removed')`
	}
	query += ` ORDER BY q.priority DESC, q.created_at ASC`

	rows, err := r.pool.Query(ctx, query, agentID, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list agent queue: %w", err)
	}
	defer rows.Close()

	var items []*domain.AgentQueueItem
	for rows.Next() {
		var it domain.AgentQueueItem
		err := rows.Scan(
			&it.ID, &it.CampaignID, &it.ContactID, &it.AccountID, &it.AgentID, &it.State,
			&it.LockedBy, &it.LockedAt, &it.LockExpiresAt, &it.LockVersion,
			&it.Priority, &it.ScheduledFor, &it.RemovedReason, &it.CreatedAt, &it.UpdatedAt,
			&it.ContactEmail, &it.ContactPhone, &it.ContactCountry,
			&it.AccountName, &it.AccountDomain,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// ---- helpers ----

// scanQueueEntry reads a single entry row from any pgx row type.
func scanQueueEntry(row pgx.Row) (*domain.QueueEntry, error) {
	var e domain.QueueEntry
	err := row.Scan(
		&e.ID, &e.CampaignID, &e.ContactID, &e.AccountID, &e.AgentID, &e.State,
		&e.LockedBy, &e.LockedAt, &e.LockExpiresAt, &e.LockVersion,
		&e.Priority, &e.ScheduledFor, &e.RemovedReason, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanStrings(rows pgx.Rows) ([]string, error) {
	var result []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
