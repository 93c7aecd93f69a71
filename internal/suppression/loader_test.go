package suppression_test

import (
	"context"
	"testing"

	"github.com/dialhub/callqueue/internal/domain"
	"github.com/dialhub/callqueue/internal/repository"
	"github.com/dialhub/callqueue/internal/suppression"
)

func TestNormalizeEmail(t *testing.T) {
	if got := suppression.NormalizeEmail("  Alice@X.COM "); got != "alice@x.com" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct{ in, want string }{
		{"WWW.Example.com", "example.com"},
		{"  example.com ", "example.com"},
		{"www.www-site.com", "www-site.com"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := suppression.NormalizeDomain(tc.in); got != tc.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmailDomain(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a@x.com", "x.com"},
		{"a@WWW.X.com", "x.com"},
		{"no-at-sign", ""},
		{"trailing@", ""},
	}
	for _, tc := range tests {
		if got := suppression.EmailDomain(tc.in); got != tc.want {
			t.Errorf("EmailDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoader_BuildsSetsFromBatch(t *testing.T) {
	repo := repository.NewMockSuppressionRepository()
	repo.ContactIDs["c1"] = true
	repo.Domains["x.com"] = true
	repo.GlobalPhones["+441144960000"] = true

	contacts := []*domain.Contact{
		{ID: "c1", AccountID: "a1", Email: "One@Foo.com", AccountDomain: "www.Foo.com"},
		{ID: "c2", AccountID: "a2", Email: "two@x.com", DirectPhoneE164: "+441144960000"},
	}

	sets, err := suppression.NewLoader(repo).Load(context.Background(), "camp-1", contacts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := sets.ContactIDs["c1"]; !ok {
		t.Error("expected c1 in campaign contact set")
	}
	if _, ok := sets.Domains["x.com"]; !ok {
		t.Error("expected x.com in campaign domain set")
	}
	if _, ok := sets.GlobalPhones["+441144960000"]; !ok {
		t.Error("expected phone in global set")
	}
	if got := sets.AccountDomains["c1"]; got != "foo.com" {
		t.Errorf("expected normalized account domain foo.com, got %q", got)
	}
}

func TestSets_IsSuppressed(t *testing.T) {
	base := domain.Contact{
		ID:        "c1",
		AccountID: "a1",
		Email:     "Alice@X.com",
	}

	load := func(seed func(*repository.MockSuppressionRepository)) *suppression.Sets {
		repo := repository.NewMockSuppressionRepository()
		seed(repo)
		c := base
		sets, err := suppression.NewLoader(repo).Load(context.Background(), "camp-1", []*domain.Contact{&c})
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		return sets
	}

	t.Run("clean contact is not suppressed", func(t *testing.T) {
		sets := load(func(*repository.MockSuppressionRepository) {})
		if sets.IsSuppressed(&base) {
			t.Fatal("expected not suppressed")
		}
	})

	t.Run("campaign contact suppression", func(t *testing.T) {
		sets := load(func(r *repository.MockSuppressionRepository) { r.ContactIDs["c1"] = true })
		if !sets.IsSuppressed(&base) {
			t.Fatal("expected suppressed via contact id")
		}
	})

	t.Run("campaign account suppression", func(t *testing.T) {
		sets := load(func(r *repository.MockSuppressionRepository) { r.AccountIDs["a1"] = true })
		if !sets.IsSuppressed(&base) {
			t.Fatal("expected suppressed via account id")
		}
	})

	t.Run("campaign email suppression is case-insensitive", func(t *testing.T) {
		sets := load(func(r *repository.MockSuppressionRepository) { r.Emails["alice@x.com"] = true })
		if !sets.IsSuppressed(&base) {
			t.Fatal("expected suppressed via normalized email")
		}
	})

	t.Run("domain suppression derived from the email domain", func(t *testing.T) {
		// The contact carries no suppression row of its own; only the
		// domain of its email address is campaign-suppressed.
		sets := load(func(r *repository.MockSuppressionRepository) { r.Domains["x.com"] = true })
		if !sets.IsSuppressed(&base) {
			t.Fatal("expected suppressed via email-derived domain")
		}
	})

	t.Run("domain suppression via the account canonical domain", func(t *testing.T) {
		repo := repository.NewMockSuppressionRepository()
		repo.Domains["corp.example"] = true
		c := base
		c.Email = "alice@personal.example"
		c.AccountDomain = "www.Corp.example"
		sets, err := suppression.NewLoader(repo).Load(context.Background(), "camp-1", []*domain.Contact{&c})
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !sets.IsSuppressed(&c) {
			t.Fatal("expected suppressed via account domain")
		}
	})

	t.Run("global email suppression", func(t *testing.T) {
		sets := load(func(r *repository.MockSuppressionRepository) { r.GlobalEmails["alice@x.com"] = true })
		if !sets.IsSuppressed(&base) {
			t.Fatal("expected suppressed via global email")
		}
	})

	t.Run("global phone suppression on either phone field", func(t *testing.T) {
		repo := repository.NewMockSuppressionRepository()
		repo.GlobalPhones["+447911123456"] = true
		c := base
		c.MobilePhoneE164 = "+447911123456"
		sets, err := suppression.NewLoader(repo).Load(context.Background(), "camp-1", []*domain.Contact{&c})
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !sets.IsSuppressed(&c) {
			t.Fatal("expected suppressed via global DNC phone")
		}
	})
}
