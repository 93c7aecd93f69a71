package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dialhub/callqueue/internal/domain"
)

// MockQueueRepository is a hand-written, in-memory implementation of
// QueueRepository used in unit tests. It reproduces the semantics that
// matter to callers: priority-then-age ordering, the lock_version
// compare-and-swap, ownership-guarded transitions, and lease expiry.
type MockQueueRepository struct {
	mu      sync.Mutex
	entries map[string]*domain.QueueEntry

	// Optional error overrides, set in tests to simulate failure paths.
	InsertErr error
	PullErr   error

	// ContactEmails backs the contact join in ListForAgent (contactID -> email).
	ContactEmails map[string]string
}

func NewMockQueueRepository() *MockQueueRepository {
	return &MockQueueRepository{entries: make(map[string]*domain.QueueEntry)}
}

func (m *MockQueueRepository) InsertEntries(_ context.Context, entries []*domain.QueueEntry) (int, error) {
	if m.InsertErr != nil {
		return 0, m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, e := range entries {
		if m.hasActiveLocked(e.CampaignID, e.ContactID) {
			continue
		}
		clone := *e
		m.entries[e.ID] = &clone
		inserted++
	}
	return inserted, nil
}

func (m *MockQueueRepository) ActiveContactIDs(_ context.Context, campaignID string, contactIDs []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var active []string
	for _, id := range contactIDs {
		if m.hasActiveLocked(campaignID, id) {
			active = append(active, id)
		}
	}
	return active, nil
}

func (m *MockQueueRepository) hasActiveLocked(campaignID, contactID string) bool {
	for _, e := range m.entries {
		if e.CampaignID == campaignID && e.ContactID == contactID && !e.State.IsTerminal() {
			return true
		}
	}
	return false
}

func (m *MockQueueRepository) PullNext(_ context.Context, agentID, campaignID string, lease time.Duration) (*domain.QueueEntry, bool, error) {
	if m.PullErr != nil {
		return nil, false, m.PullErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()

	var candidates []*domain.QueueEntry
	for _, e := range m.entries {
		if e.AgentID != agentID || e.CampaignID != campaignID || e.State != domain.StateQueued {
			continue
		}
		if e.ScheduledFor != nil && e.ScheduledFor.After(now) {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})

	e := candidates[0]
	agent := agentID
	expires := now.Add(lease)
	e.State = domain.StateLocked
	e.LockedBy = &agent
	e.LockedAt = &now
	e.LockExpiresAt = &expires
	e.LockVersion++
	e.UpdatedAt = now

	clone := *e
	return &clone, true, nil
}

func (m *MockQueueRepository) MarkInProgress(_ context.Context, entryID, agentID string) error {
	return m.ownedTransition(entryID, agentID, func(e *domain.QueueEntry) {
		e.State = domain.StateInProgress
	})
}

func (m *MockQueueRepository) MarkCompleted(_ context.Context, entryID, agentID string) error {
	return m.ownedTransition(entryID, agentID, func(e *domain.QueueEntry) {
		e.State = domain.StateCompleted
		clearLease(e)
	})
}

func (m *MockQueueRepository) Remove(_ context.Context, entryID, agentID, reason string) error {
	return m.ownedTransition(entryID, agentID, func(e *domain.QueueEntry) {
		e.State = domain.StateRemoved
		e.RemovedReason = &reason
		clearLease(e)
	})
}

func (m *MockQueueRepository) ReleaseLock(_ context.Context, entryID, agentID string) error {
	return m.ownedTransition(entryID, agentID, func(e *domain.QueueEntry) {
		e.State = domain.StateQueued
		clearLease(e)
	})
}

func (m *MockQueueRepository) ownedTransition(entryID, agentID string, apply func(*domain.QueueEntry)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[entryID]
	if !ok {
		return domain.ErrLeaseLost
	}
	if e.State != domain.StateLocked && e.State != domain.StateInProgress {
		return domain.ErrLeaseLost
	}
	if e.LockedBy == nil || *e.LockedBy != agentID {
		return domain.ErrLeaseLost
	}
	apply(e)
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockQueueRepository) BoostPriority(_ context.Context, entryID string, boost int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[entryID]
	if !ok {
		return domain.ErrNotFound
	}
	e.Priority += boost
	return nil
}

func (m *MockQueueRepository) ReclaimExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	reclaimed := 0
	for _, e := range m.entries {
		if e.State == domain.StateLocked && e.LockExpiresAt != nil && !e.LockExpiresAt.After(now) {
			e.State = domain.StateQueued
			clearLease(e)
			e.UpdatedAt = now
			reclaimed++
		}
	}
	return reclaimed, nil
}

func (m *MockQueueRepository) GetByID(_ context.Context, entryID string) (*domain.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[entryID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (m *MockQueueRepository) Stats(_ context.Context, agentID, campaignID string) (*domain.QueueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &domain.QueueStats{}
	for _, e := range m.entries {
		if e.AgentID != agentID || e.CampaignID != campaignID {
			continue
		}
		switch e.State {
		case domain.StateQueued:
			stats.Queued++
		case domain.StateLocked:
			stats.Locked++
		case domain.StateInProgress:
			stats.InProgress++
		case domain.StateCompleted:
			stats.Completed++
		case domain.StateRemoved:
			stats.Removed++
		}
	}
	return stats, nil
}

func (m *MockQueueRepository) ClearCompleted(_ context.Context, agentID, campaignID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.entries {
		if e.AgentID == agentID && e.CampaignID == campaignID && e.State == domain.StateCompleted {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MockQueueRepository) ListForAgent(_ context.Context, agentID, campaignID string, includeCompleted bool) ([]*domain.AgentQueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []*domain.AgentQueueItem
	for _, e := range m.entries {
		if e.AgentID != agentID || e.CampaignID != campaignID {
			continue
		}
		if !includeCompleted && e.State.IsTerminal() {
			continue
		}
		item := &domain.AgentQueueItem{QueueEntry: *e}
		if m.ContactEmails != nil {
			item.ContactEmail = m.ContactEmails[e.ContactID]
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority > items[j].Priority
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func clearLease(e *domain.QueueEntry) {
	e.LockedBy = nil
	e.LockedAt = nil
	e.LockExpiresAt = nil
}
