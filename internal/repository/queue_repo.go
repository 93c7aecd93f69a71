package repository

import (
	"context"
	"time"

	"github.com/dialhub/callqueue/internal/domain"
)

// QueueRepository defines all persistence operations on queue entries.
// The pgx implementation is in pg_queue_repo.go.
// Tests use a hand-written mock (mock_queue_repo.go) that reproduces the
// ordering, ownership, and compare-and-swap semantics in memory.
type QueueRepository interface {
	// InsertEntries bulk-inserts entries in state=queued with an
	// insert-or-ignore policy keyed on (campaign_id, contact_id) over the
	// non-terminal states, so a concurrent populate cannot create
	// duplicates. Returns the number of rows actually inserted.
	InsertEntries(ctx context.Context, entries []*domain.QueueEntry) (int, error)

	// ActiveContactIDs returns which of the given contacts already have a
	// non-terminal entry in the campaign, in one bulk query.
	ActiveContactIDs(ctx context.Context, campaignID string, contactIDs []string) ([]string, error)

	// PullNext atomically selects and leases the agent's next eligible
	// entry: highest priority first, oldest first on ties, skipping rows
	// held by a concurrent in-flight pull. ok=false with a nil error is a
	// normal miss (empty backlog or all candidates contended).
	PullNext(ctx context.Context, agentID, campaignID string, lease time.Duration) (*domain.QueueEntry, bool, error)

	// Lifecycle transitions. Each is a conditional update guarded by
	// locked_by = agentID; zero rows affected surfaces as ErrLeaseLost.
	MarkInProgress(ctx context.Context, entryID, agentID string) error
	MarkCompleted(ctx context.Context, entryID, agentID string) error
	Remove(ctx context.Context, entryID, agentID, reason string) error
	ReleaseLock(ctx context.Context, entryID, agentID string) error

	BoostPriority(ctx context.Context, entryID string, boost int) error

	// ReclaimExpired returns every locked entry whose lease expired to
	// state=queued with lease fields cleared, and reports how many rows
	// were reclaimed. Safe to call from any number of sweepers.
	ReclaimExpired(ctx context.Context, now time.Time) (int, error)

	GetByID(ctx context.Context, entryID string) (*domain.QueueEntry, error)
	Stats(ctx context.Context, agentID, campaignID string) (*domain.QueueStats, error)
	ClearCompleted(ctx context.Context, agentID, campaignID string) (int, error)
	ListForAgent(ctx context.Context, agentID, campaignID string, includeCompleted bool) ([]*domain.AgentQueueItem, error)
}
