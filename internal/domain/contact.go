package domain

import "time"

// DialMode distinguishes agent-driven campaigns from automated ones.
// Only manual campaigns may be populated into the work queue.
type DialMode string

const (
	DialModeManual    DialMode = "manual"
	DialModeAutomated DialMode = "automated"
)

// Campaign is the read model exposed by the campaign store.
type Campaign struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	DialMode DialMode `json:"dial_mode"`
}

// Contact is the read model for a dialing candidate, joined with the owning
// account's phone, country, and domain. Phone fields come in a raw form and,
// when a previous normalization pass succeeded, an E.164 form.
type Contact struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Email     string `json:"email,omitempty"`
	Country   string `json:"country,omitempty"`
	Region    string `json:"region,omitempty"`

	DirectPhone     string `json:"direct_phone,omitempty"`
	DirectPhoneE164 string `json:"direct_phone_e164,omitempty"`
	MobilePhone     string `json:"mobile_phone,omitempty"`
	MobilePhoneE164 string `json:"mobile_phone_e164,omitempty"`

	AccountName    string `json:"account_name,omitempty"`
	AccountDomain  string `json:"account_domain,omitempty"`
	AccountPhone   string `json:"account_phone,omitempty"`
	AccountCountry string `json:"account_country,omitempty"`
}

// ContactFilter holds the candidate-selection predicates for populate.
// Zero values mean "no constraint".
type ContactFilter struct {
	AccountIDs []string `json:"account_ids,omitempty"`
	Industry   string   `json:"industry,omitempty"`
	Region     string   `json:"region,omitempty"`
	HasEmail   bool     `json:"has_email,omitempty"`
	HasPhone   bool     `json:"has_phone,omitempty"`
}

// ValidationJobStatus tracks a bulk email-validation job.
type ValidationJobStatus string

const (
	JobPending    ValidationJobStatus = "pending"
	JobProcessing ValidationJobStatus = "processing"
	JobCompleted  ValidationJobStatus = "completed"
	JobFailed     ValidationJobStatus = "failed"
)

// ValidationJob is a checkpointed bulk job. ProcessedCount is the resume
// point: a job orphaned in "processing" (e.g. the process died) is picked up
// again by the reclaim worker and continued from there.
type ValidationJob struct {
	ID             string              `json:"id"`
	AgentID        string              `json:"agent_id"`
	CampaignID     string              `json:"campaign_id"`
	Status         ValidationJobStatus `json:"status"`
	Total          int                 `json:"total"`
	ProcessedCount int                 `json:"processed_count"`
	ErrorMessage   *string             `json:"error_message,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}
