package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound        = errors.New("not found")
	ErrNotManualDial   = errors.New("campaign is not configured for manual dialing")
	ErrLeaseLost       = errors.New("entry is not leased by this agent")
	ErrInvalidAgent    = errors.New("agent_id must not be empty")
	ErrInvalidCampaign = errors.New("campaign_id must not be empty")
	ErrInvalidLimit    = errors.New("limit must be between 0 and 10000")
	ErrEmptyReason     = errors.New("removal reason must not be empty")
	ErrPullThrottled   = errors.New("pull rate limit exceeded, slow down the poll loop")
	ErrJobEmpty        = errors.New("validation job must contain at least one email")
)
