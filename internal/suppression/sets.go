package suppression

import (
	"strings"

	"github.com/dialhub/callqueue/internal/domain"
)

// Sets is a request-scoped bundle of suppression rules, prefetched in bulk
// for one candidate batch. Membership checks are O(1) map lookups; the
// bundle is built once per populate call and passed down the call chain
// rather than cached across requests.
type Sets struct {
	// Campaign-scoped.
	ContactIDs map[string]struct{}
	AccountIDs map[string]struct{}
	Emails     map[string]struct{}
	Domains    map[string]struct{}

	// Global do-not-contact.
	GlobalEmails map[string]struct{}
	GlobalPhones map[string]struct{}

	// Contact id -> canonical account domain, for domain-derived suppression
	// of contacts whose own email is on a different domain.
	AccountDomains map[string]string
}

func newSets() *Sets {
	return &Sets{
		ContactIDs:     make(map[string]struct{}),
		AccountIDs:     make(map[string]struct{}),
		Emails:         make(map[string]struct{}),
		Domains:        make(map[string]struct{}),
		GlobalEmails:   make(map[string]struct{}),
		GlobalPhones:   make(map[string]struct{}),
		AccountDomains: make(map[string]string),
	}
}

// IsSuppressed checks the rule layers in order and short-circuits on the
// first match: campaign contact, campaign account, campaign email, campaign
// domain (email-derived and account-canonical), global email, global phone
// (direct and mobile E.164).
func (s *Sets) IsSuppressed(c *domain.Contact) bool {
	if _, ok := s.ContactIDs[c.ID]; ok {
		return true
	}
	if _, ok := s.AccountIDs[c.AccountID]; ok {
		return true
	}

	email := NormalizeEmail(c.Email)
	if email != "" {
		if _, ok := s.Emails[email]; ok {
			return true
		}
	}

	if d := EmailDomain(email); d != "" {
		if _, ok := s.Domains[d]; ok {
			return true
		}
	}
	if d := NormalizeDomain(s.AccountDomains[c.ID]); d != "" {
		if _, ok := s.Domains[d]; ok {
			return true
		}
	}

	if email != "" {
		if _, ok := s.GlobalEmails[email]; ok {
			return true
		}
	}

	if c.DirectPhoneE164 != "" {
		if _, ok := s.GlobalPhones[c.DirectPhoneE164]; ok {
			return true
		}
	}
	if c.MobilePhoneE164 != "" {
		if _, ok := s.GlobalPhones[c.MobilePhoneE164]; ok {
			return true
		}
	}

	return false
}

// NormalizeEmail lower-cases and trims an email for set membership.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeDomain lower-cases, trims, and strips a leading "www." so stored
// rules and CRM data agree on the canonical form.
func NormalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	return strings.TrimPrefix(d, "www.")
}

// EmailDomain extracts the normalized domain part of an already-normalized
// email, or "" when the input has no domain part.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return NormalizeDomain(email[at+1:])
}
