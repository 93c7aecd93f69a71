package repository

import (
	"context"
	"sync"
	"time"

	"github.com/dialhub/callqueue/internal/domain"
)

// MockContactRepository is an in-memory ContactRepository for unit tests.
type MockContactRepository struct {
	mu        sync.Mutex
	Campaigns map[string]*domain.Campaign
	Contacts  []*domain.Contact

	// SavedPhones records SaveNormalizedPhone calls as contactID -> source -> e164.
	SavedPhones map[string]map[string]string

	FindErr error
}

func NewMockContactRepository() *MockContactRepository {
	return &MockContactRepository{
		Campaigns:   make(map[string]*domain.Campaign),
		SavedPhones: make(map[string]map[string]string),
	}
}

func (m *MockContactRepository) GetCampaign(_ context.Context, campaignID string) (*domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Campaigns[campaignID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *MockContactRepository) FindCandidates(_ context.Context, _ domain.ContactFilter, limit int) ([]*domain.Contact, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*domain.Contact
	for _, c := range m.Contacts {
		if limit > 0 && len(result) >= limit {
			break
		}
		clone := *c
		result = append(result, &clone)
	}
	return result, nil
}

func (m *MockContactRepository) SaveNormalizedPhone(_ context.Context, contactID, source, e164 string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SavedPhones[contactID] == nil {
		m.SavedPhones[contactID] = make(map[string]string)
	}
	m.SavedPhones[contactID][source] = e164
	return nil
}

// MockSuppressionRepository is an in-memory SuppressionRepository. Tests
// seed the exported sets directly; lookups intersect them with the batch.
type MockSuppressionRepository struct {
	ContactIDs   map[string]bool
	AccountIDs   map[string]bool
	Emails       map[string]bool
	Domains      map[string]bool
	GlobalEmails map[string]bool
	GlobalPhones map[string]bool
}

func NewMockSuppressionRepository() *MockSuppressionRepository {
	return &MockSuppressionRepository{
		ContactIDs:   make(map[string]bool),
		AccountIDs:   make(map[string]bool),
		Emails:       make(map[string]bool),
		Domains:      make(map[string]bool),
		GlobalEmails: make(map[string]bool),
		GlobalPhones: make(map[string]bool),
	}
}

func intersect(set map[string]bool, values []string) []string {
	var hits []string
	for _, v := range values {
		if set[v] {
			hits = append(hits, v)
		}
	}
	return hits
}

func (m *MockSuppressionRepository) SuppressedContactIDs(_ context.Context, _ string, ids []string) ([]string, error) {
	return intersect(m.ContactIDs, ids), nil
}

func (m *MockSuppressionRepository) SuppressedAccountIDs(_ context.Context, _ string, ids []string) ([]string, error) {
	return intersect(m.AccountIDs, ids), nil
}

func (m *MockSuppressionRepository) SuppressedEmails(_ context.Context, _ string, emails []string) ([]string, error) {
	return intersect(m.Emails, emails), nil
}

func (m *MockSuppressionRepository) SuppressedDomains(_ context.Context, _ string, domains []string) ([]string, error) {
	return intersect(m.Domains, domains), nil
}

func (m *MockSuppressionRepository) GlobalSuppressedEmails(_ context.Context, emails []string) ([]string, error) {
	return intersect(m.GlobalEmails, emails), nil
}

func (m *MockSuppressionRepository) GlobalSuppressedPhones(_ context.Context, phones []string) ([]string, error) {
	return intersect(m.GlobalPhones, phones), nil
}

// MockValidationJobRepository is an in-memory ValidationJobRepository.
type MockValidationJobRepository struct {
	mu   sync.Mutex
	Jobs map[string]*domain.ValidationJob
}

func NewMockValidationJobRepository() *MockValidationJobRepository {
	return &MockValidationJobRepository{Jobs: make(map[string]*domain.ValidationJob)}
}

func (m *MockValidationJobRepository) Create(_ context.Context, job *domain.ValidationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *job
	m.Jobs[job.ID] = &clone
	return nil
}

func (m *MockValidationJobRepository) GetByID(_ context.Context, id string) (*domain.ValidationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.Jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *j
	return &clone, nil
}

func (m *MockValidationJobRepository) MarkProcessing(_ context.Context, id string) error {
	return m.update(id, func(j *domain.ValidationJob) { j.Status = domain.JobProcessing })
}

func (m *MockValidationJobRepository) Checkpoint(_ context.Context, id string, processed int) error {
	return m.update(id, func(j *domain.ValidationJob) { j.ProcessedCount = processed })
}

func (m *MockValidationJobRepository) MarkCompleted(_ context.Context, id string) error {
	return m.update(id, func(j *domain.ValidationJob) {
		j.Status = domain.JobCompleted
		j.ProcessedCount = j.Total
	})
}

func (m *MockValidationJobRepository) MarkFailed(_ context.Context, id, errMsg string) error {
	return m.update(id, func(j *domain.ValidationJob) {
		j.Status = domain.JobFailed
		j.ErrorMessage = &errMsg
	})
}

func (m *MockValidationJobRepository) FindOrphaned(_ context.Context, cutoff time.Time) ([]*domain.ValidationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var jobs []*domain.ValidationJob
	for _, j := range m.Jobs {
		if j.Status == domain.JobProcessing && !j.UpdatedAt.After(cutoff) {
			clone := *j
			jobs = append(jobs, &clone)
		}
	}
	return jobs, nil
}

func (m *MockValidationJobRepository) update(id string, apply func(*domain.ValidationJob)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.Jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	apply(j)
	j.UpdatedAt = time.Now().UTC()
	return nil
}
