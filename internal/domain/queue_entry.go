package domain

import "time"

// QueueState tracks the lifecycle of a queue entry.
type QueueState string

const (
	StateQueued     QueueState = "queued"
	StateLocked     QueueState = "locked"
	StateInProgress QueueState = "in_progress"
	StateCompleted  QueueState = "completed"
	StateRemoved    QueueState = "removed"
)

func (s QueueState) IsValid() bool {
	switch s {
	case StateQueued, StateLocked, StateInProgress, StateCompleted, StateRemoved:
		return true
	}
	return false
}

// IsTerminal reports whether the state can never transition again.
// The (campaign, contact) uniqueness rule only applies to non-terminal rows.
func (s QueueState) IsTerminal() bool {
	return s == StateCompleted || s == StateRemoved
}

// QueueEntry is one unit of dialing work: an agent's claim on a
// (campaign, contact) pair, carrying lease and lifecycle state.
type QueueEntry struct {
	ID         string     `json:"id"`
	CampaignID string     `json:"campaign_id"`
	ContactID  string     `json:"contact_id"`
	AccountID  string     `json:"account_id"`
	AgentID    string     `json:"agent_id"`
	State      QueueState `json:"state"`

	// Lease fields. LockedBy always equals AgentID when set; it is kept
	// separately so a reclaimed entry can show who last held it in audit
	// queries while the entry itself is back in the backlog.
	LockedBy      *string    `json:"locked_by,omitempty"`
	LockedAt      *time.Time `json:"locked_at,omitempty"`
	LockExpiresAt *time.Time `json:"lock_expires_at,omitempty"`

	// LockVersion is the optimistic-concurrency token. Every successful
	// lease acquisition increments it; a guarded update with a stale value
	// affects zero rows.
	LockVersion int `json:"lock_version"`

	Priority      int        `json:"priority"`
	ScheduledFor  *time.Time `json:"scheduled_for,omitempty"`
	RemovedReason *string    `json:"removed_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AgentQueueItem is a queue entry joined with contact and account display
// fields, returned by the agent-queue listing endpoint.
type AgentQueueItem struct {
	QueueEntry
	ContactEmail   string `json:"contact_email,omitempty"`
	ContactPhone   string `json:"contact_phone,omitempty"`
	ContactCountry string `json:"contact_country,omitempty"`
	AccountName    string `json:"account_name,omitempty"`
	AccountDomain  string `json:"account_domain,omitempty"`
}

// QueueStats aggregates entry counts per state for one agent+campaign pair.
type QueueStats struct {
	Queued     int `json:"queued"`
	Locked     int `json:"locked"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Removed    int `json:"removed"`
}

// Total returns the number of entries across all states.
func (s QueueStats) Total() int {
	return s.Queued + s.Locked + s.InProgress + s.Completed + s.Removed
}

// PopulateRequest is the inbound payload for the queue-populate endpoint.
type PopulateRequest struct {
	AgentID    string        `json:"agent_id"`
	CampaignID string        `json:"campaign_id"`
	Filter     ContactFilter `json:"filter"`
	Limit      int           `json:"limit"`
}

func (r *PopulateRequest) Validate() error {
	if r.AgentID == "" {
		return ErrInvalidAgent
	}
	if r.CampaignID == "" {
		return ErrInvalidCampaign
	}
	if r.Limit < 0 || r.Limit > 10000 {
		return ErrInvalidLimit
	}
	return nil
}

// PopulateResult reports how many candidates became queue entries and how
// many were filtered out (suppressed, already queued, or phone-ineligible).
type PopulateResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// PullRequest identifies the agent asking for its next contact.
type PullRequest struct {
	AgentID    string `json:"agent_id"`
	CampaignID string `json:"campaign_id"`
}

func (r *PullRequest) Validate() error {
	if r.AgentID == "" {
		return ErrInvalidAgent
	}
	if r.CampaignID == "" {
		return ErrInvalidCampaign
	}
	return nil
}
