package repository

import (
	"context"
	"time"

	"github.com/dialhub/callqueue/internal/domain"
)

// ContactRepository is the narrow read surface this service needs from the
// wider CRM's contact/account/campaign stores, plus the single write-back it
// is allowed: persisting a freshly normalized contact phone number.
type ContactRepository interface {
	GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error)

	// FindCandidates returns contacts matching the filter, joined with the
	// owning account's name, domain, HQ phone, and country, bounded by limit.
	FindCandidates(ctx context.Context, filter domain.ContactFilter, limit int) ([]*domain.Contact, error)

	// SaveNormalizedPhone patches the contact's direct or mobile E.164
	// field. The account HQ phone is read-only from this service and is
	// never written back.
	SaveNormalizedPhone(ctx context.Context, contactID string, source string, e164 string) error
}

// SuppressionRepository exposes the bulk set fetches behind the suppression
// loader. Every method resolves one rule layer for one batch in one query.
type SuppressionRepository interface {
	SuppressedContactIDs(ctx context.Context, campaignID string, contactIDs []string) ([]string, error)
	SuppressedAccountIDs(ctx context.Context, campaignID string, accountIDs []string) ([]string, error)
	SuppressedEmails(ctx context.Context, campaignID string, emails []string) ([]string, error)
	SuppressedDomains(ctx context.Context, campaignID string, domains []string) ([]string, error)
	GlobalSuppressedEmails(ctx context.Context, emails []string) ([]string, error)
	GlobalSuppressedPhones(ctx context.Context, phones []string) ([]string, error)
}

// ValidationJobRepository persists checkpointed bulk email-validation jobs.
type ValidationJobRepository interface {
	Create(ctx context.Context, job *domain.ValidationJob) error
	GetByID(ctx context.Context, id string) (*domain.ValidationJob, error)

	// MarkProcessing transitions a pending or orphaned job to processing
	// and bumps updated_at, which doubles as the liveness heartbeat.
	MarkProcessing(ctx context.Context, id string) error

	// Checkpoint records progress; the reclaim worker resumes an orphaned
	// job from the last checkpointed count.
	Checkpoint(ctx context.Context, id string, processed int) error

	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error

	// FindOrphaned returns processing jobs with no heartbeat since the
	// cutoff: the process working them is presumed dead.
	FindOrphaned(ctx context.Context, cutoff time.Time) ([]*domain.ValidationJob, error)
}
