package suppression

import (
	"context"
	"fmt"

	"github.com/dialhub/callqueue/internal/domain"
	"github.com/dialhub/callqueue/internal/repository"
)

// Loader bulk-loads every suppression rule applicable to a candidate batch.
// Each set is filled by exactly one fetch scoped to the ids/emails/phones
// present in the batch; there are no per-contact round trips.
type Loader struct {
	repo repository.SuppressionRepository
}

func NewLoader(repo repository.SuppressionRepository) *Loader {
	return &Loader{repo: repo}
}

// Load builds the suppression Sets for the given campaign and batch.
func (l *Loader) Load(ctx context.Context, campaignID string, contacts []*domain.Contact) (*Sets, error) {
	sets := newSets()
	if len(contacts) == 0 {
		return sets, nil
	}

	contactIDs := make([]string, 0, len(contacts))
	accountIDs := make([]string, 0, len(contacts))
	emails := make([]string, 0, len(contacts))
	domains := make([]string, 0, len(contacts))
	phones := make([]string, 0, len(contacts))

	seenAccounts := make(map[string]struct{}, len(contacts))
	seenDomains := make(map[string]struct{}, len(contacts))

	for _, c := range contacts {
		contactIDs = append(contactIDs, c.ID)

		if _, ok := seenAccounts[c.AccountID]; !ok {
			seenAccounts[c.AccountID] = struct{}{}
			accountIDs = append(accountIDs, c.AccountID)
		}

		email := NormalizeEmail(c.Email)
		if email != "" {
			emails = append(emails, email)
		}

		for _, d := range []string{EmailDomain(email), NormalizeDomain(c.AccountDomain)} {
			if d == "" {
				continue
			}
			if _, ok := seenDomains[d]; !ok {
				seenDomains[d] = struct{}{}
				domains = append(domains, d)
			}
		}
		if d := NormalizeDomain(c.AccountDomain); d != "" {
			sets.AccountDomains[c.ID] = d
		}

		if c.DirectPhoneE164 != "" {
			phones = append(phones, c.DirectPhoneE164)
		}
		if c.MobilePhoneE164 != "" {
			phones = append(phones, c.MobilePhoneE164)
		}
	}

	suppressedContacts, err := l.repo.SuppressedContactIDs(ctx, campaignID, contactIDs)
	if err != nil {
		return nil, fmt.Errorf("load contact suppressions: %w", err)
	}
	fill(sets.ContactIDs, suppressedContacts)

	suppressedAccounts, err := l.repo.SuppressedAccountIDs(ctx, campaignID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("load account suppressions: %w", err)
	}
	fill(sets.AccountIDs, suppressedAccounts)

	suppressedEmails, err := l.repo.SuppressedEmails(ctx, campaignID, emails)
	if err != nil {
		return nil, fmt.Errorf("load email suppressions: %w", err)
	}
	fill(sets.Emails, suppressedEmails)

	suppressedDomains, err := l.repo.SuppressedDomains(ctx, campaignID, domains)
	if err != nil {
		return nil, fmt.Errorf("load domain suppressions: %w", err)
	}
	fill(sets.Domains, suppressedDomains)

	globalEmails, err := l.repo.GlobalSuppressedEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("load global email suppressions: %w", err)
	}
	fill(sets.GlobalEmails, globalEmails)

	globalPhones, err := l.repo.GlobalSuppressedPhones(ctx, phones)
	if err != nil {
		return nil, fmt.Errorf("load global phone suppressions: %w", err)
	}
	fill(sets.GlobalPhones, globalPhones)

	return sets, nil
}

func fill(set map[string]struct{}, values []string) {
	for _, v := range values {
		set[v] = struct{}{}
	}
}
