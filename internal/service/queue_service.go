package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dialhub/callqueue/internal/domain"
	"github.com/dialhub/callqueue/internal/phone"
	"github.com/dialhub/callqueue/internal/repository"
	"github.com/dialhub/callqueue/internal/suppression"
)

// QueueService coordinates queue population, dispatch, and entry lifecycle.
// All business rules (dial-mode precondition, suppression and phone
// eligibility filtering, ownership semantics) live here. HTTP handlers and
// workers depend on this service, not on each other.
type QueueService struct {
	queue    repository.QueueRepository
	contacts repository.ContactRepository
	loader   *suppression.Loader
	resolver *phone.Resolver

	leaseDuration time.Duration
	priorityBoost int
	populateLimit int
	logger        *zap.Logger
}

// Options carries the tunables the service needs from config.
type Options struct {
	LeaseDuration time.Duration // how long a pulled entry stays leased
	PriorityBoost int           // added on an explicit retry request
	PopulateLimit int           // candidate cap when the request omits one
}

func NewQueueService(
	queue repository.QueueRepository,
	contacts repository.ContactRepository,
	loader *suppression.Loader,
	resolver *phone.Resolver,
	opts Options,
	logger *zap.Logger,
) *QueueService {
	if opts.LeaseDuration <= 0 {
		opts.LeaseDuration = 15 * time.Minute
	}
	if opts.PriorityBoost <= 0 {
		opts.PriorityBoost = 10
	}
	if opts.PopulateLimit <= 0 {
		opts.PopulateLimit = 500
	}
	return &QueueService{
		queue:         queue,
		contacts:      contacts,
		loader:        loader,
		resolver:      resolver,
		leaseDuration: opts.LeaseDuration,
		priorityBoost: opts.PriorityBoost,
		populateLimit: opts.PopulateLimit,
		logger:        logger,
	}
}

// Populate materializes queue entries for an agent from a contact filter:
// resolve candidates, bulk-load suppression sets for exactly that batch,
// drop the already-queued, the suppressed, and the phone-ineligible, write
// freshly normalized numbers back onto surviving contacts, and bulk-insert
// the rest as queued entries.
func (s *QueueService) Populate(ctx context.Context, req domain.PopulateRequest) (*domain.PopulateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	campaign, err := s.contacts.GetCampaign(ctx, req.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("campaign lookup: %w", err)
	}
	if campaign.DialMode != domain.DialModeManual {
		return nil, domain.ErrNotManualDial
	}

	limit := req.Limit
	if limit == 0 {
		limit = s.populateLimit
	}

	candidates, err := s.contacts.FindCandidates(ctx, req.Filter, limit)
	if err != nil {
		return nil, fmt.Errorf("resolve candidates: %w", err)
	}
	if len(candidates) == 0 {
		return &domain.PopulateResult{}, nil
	}

	sets, err := s.loader.Load(ctx, req.CampaignID, candidates)
	if err != nil {
		return nil, fmt.Errorf("load suppression sets: %w", err)
	}

	contactIDs := make([]string, len(candidates))
	for i, c := range candidates {
		contactIDs[i] = c.ID
	}
	active, err := s.queue.ActiveContactIDs(ctx, req.CampaignID, contactIDs)
	if err != nil {
		return nil, fmt.Errorf("check existing entries: %w", err)
	}
	alreadyQueued := make(map[string]struct{}, len(active))
	for _, id := range active {
		alreadyQueued[id] = struct{}{}
	}

	now := time.Now().UTC()
	entries := make([]*domain.QueueEntry, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := alreadyQueued[c.ID]; ok {
			continue
		}
		if sets.IsSuppressed(c) {
			continue
		}

		res := s.resolver.Resolve(c)
		if !res.Eligible() {
			continue
		}

		// Persist a normalization won from a raw field so the next populate
		// (and the global phone-suppression check) can use the E.164 form
		// directly. Contact-owned fields only; the HQ phone belongs to the
		// account record and is never written from here.
		switch res.Source {
		case phone.SourceDirect:
			if c.DirectPhoneE164 == "" {
				if err := s.contacts.SaveNormalizedPhone(ctx, c.ID, string(res.Source), res.Number); err != nil {
					return nil, fmt.Errorf("save normalized phone: %w", err)
				}
			}
		case phone.SourceMobile:
			if c.MobilePhoneE164 == "" {
				if err := s.contacts.SaveNormalizedPhone(ctx, c.ID, string(res.Source), res.Number); err != nil {
					return nil, fmt.Errorf("save normalized phone: %w", err)
				}
			}
		}

		entries = append(entries, &domain.QueueEntry{
			ID:         uuid.New().String(),
			CampaignID: req.CampaignID,
			ContactID:  c.ID,
			AccountID:  c.AccountID,
			AgentID:    req.AgentID,
			State:      domain.StateQueued,
			Priority:   0,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	added, err := s.queue.InsertEntries(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("insert queue entries: %w", err)
	}

	result := &domain.PopulateResult{
		Added:   added,
		Skipped: len(candidates) - added,
	}
	s.logger.Info("queue populated",
		zap.String("agent_id", req.AgentID),
		zap.String("campaign_id", req.CampaignID),
		zap.Int("candidates", len(candidates)),
		zap.Int("added", result.Added),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// PullNext leases the agent's next eligible entry. ok=false with a nil
// error is a normal miss; the agent's poll loop just tries again later.
func (s *QueueService) PullNext(ctx context.Context, req domain.PullRequest) (*domain.QueueEntry, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}
	return s.queue.PullNext(ctx, req.AgentID, req.CampaignID, s.leaseDuration)
}

// MarkInProgress flags a leased entry as actively being worked.
func (s *QueueService) MarkInProgress(ctx context.Context, entryID, agentID string) error {
	return s.queue.MarkInProgress(ctx, entryID, agentID)
}

// MarkCompleted finishes a leased entry.
func (s *QueueService) MarkCompleted(ctx context.Context, entryID, agentID string) error {
	return s.queue.MarkCompleted(ctx, entryID, agentID)
}

// RemoveFromQueue drops a leased entry with a reason (wrong number, asked
// not to be called, etc.).
func (s *QueueService) RemoveFromQueue(ctx context.Context, entryID, agentID, reason string) error {
	if reason == "" {
		return domain.ErrEmptyReason
	}
	return s.queue.Remove(ctx, entryID, agentID, reason)
}

// ReleaseLock returns a leased entry to the backlog, clearing lease fields.
func (s *QueueService) ReleaseLock(ctx context.Context, entryID, agentID string) error {
	return s.queue.ReleaseLock(ctx, entryID, agentID)
}

// BoostPriority raises an entry's priority by the configured increment so a
// requested retry surfaces ahead of the rest of the backlog.
func (s *QueueService) BoostPriority(ctx context.Context, entryID string) error {
	return s.queue.BoostPriority(ctx, entryID, s.priorityBoost)
}

// Stats aggregates entry counts per state for an agent+campaign pair.
func (s *QueueService) Stats(ctx context.Context, agentID, campaignID string) (*domain.QueueStats, error) {
	return s.queue.Stats(ctx, agentID, campaignID)
}

// ClearCompleted hard-deletes the agent's completed entries for housekeeping.
func (s *QueueService) ClearCompleted(ctx context.Context, agentID, campaignID string) (int, error) {
	return s.queue.ClearCompleted(ctx, agentID, campaignID)
}

// AgentQueue lists the agent's entries joined with contact and account
// display fields.
func (s *QueueService) AgentQueue(ctx context.Context, agentID, campaignID string, includeCompleted bool) ([]*domain.AgentQueueItem, error) {
	return s.queue.ListForAgent(ctx, agentID, campaignID, includeCompleted)
}
