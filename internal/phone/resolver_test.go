package phone_test

import (
	"testing"

	"github.com/dialhub/callqueue/internal/domain"
	"github.com/dialhub/callqueue/internal/phone"
)

func TestResolver_Cascade(t *testing.T) {
	r := phone.NewResolver(phone.LenientPolicy{})

	tests := []struct {
		name       string
		contact    domain.Contact
		wantNumber string
		wantSource phone.Source
	}{
		{
			name: "normalized direct wins over everything",
			contact: domain.Contact{
				DirectPhoneE164: "+14155552671",
				MobilePhoneE164: "+447911123456",
				AccountPhone:    "020 7946 0958",
				AccountCountry:  "United Kingdom",
			},
			wantNumber: "+14155552671",
			wantSource: phone.SourceDirect,
		},
		{
			name: "normalized mobile before raw direct",
			contact: domain.Contact{
				MobilePhoneE164: "+447911123456",
				DirectPhone:     "0114 496 0000",
				Country:         "United Kingdom",
			},
			wantNumber: "+447911123456",
			wantSource: phone.SourceMobile,
		},
		{
			name: "raw direct parsed with trunk prefix substitution",
			contact: domain.Contact{
				DirectPhone: "0114 496 0000",
				Country:     "United Kingdom",
			},
			wantNumber: "+441144960000",
			wantSource: phone.SourceDirect,
		},
		{
			name: "raw mobile when direct is garbage",
			contact: domain.Contact{
				DirectPhone: "n/a",
				MobilePhone: "07911 123456",
				Country:     "United Kingdom",
			},
			wantNumber: "+447911123456",
			wantSource: phone.SourceMobile,
		},
		{
			name: "HQ fallback uses the account country",
			contact: domain.Contact{
				Country:        "United States",
				AccountPhone:   "020 7946 0958",
				AccountCountry: "United Kingdom",
			},
			wantNumber: "+442079460958",
			wantSource: phone.SourceHQ,
		},
		{
			name: "international format parses without a known country",
			contact: domain.Contact{
				DirectPhone: "+49 30 901820",
			},
			wantNumber: "+4930901820",
			wantSource: phone.SourceDirect,
		},
		{
			name:    "no phone anywhere yields no resolution",
			contact: domain.Contact{Email: "a@example.com"},
		},
		{
			name: "unparseable everywhere yields no resolution",
			contact: domain.Contact{
				DirectPhone:  "call reception",
				MobilePhone:  "12345",
				AccountPhone: "tbd",
				Country:      "United Kingdom",
			},
		},
		{
			name: "national format without a recognized country fails",
			contact: domain.Contact{
				DirectPhone: "0114 496 0000",
				Country:     "Atlantis",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := r.Resolve(&tc.contact)
			if res.Number != tc.wantNumber {
				t.Fatalf("number = %q, want %q", res.Number, tc.wantNumber)
			}
			if res.Source != tc.wantSource {
				t.Fatalf("source = %q, want %q", res.Source, tc.wantSource)
			}
			if res.Eligible() != (tc.wantNumber != "") {
				t.Fatalf("Eligible() = %v inconsistent with number %q", res.Eligible(), res.Number)
			}
		})
	}
}

func TestResolver_Policies(t *testing.T) {
	// A US number on a contact whose stated country is the UK: the policies
	// disagree on whether that is eligible.
	mismatch := domain.Contact{
		DirectPhoneE164: "+14155552671",
		Country:         "United Kingdom",
	}

	t.Run("lenient accepts a country mismatch", func(t *testing.T) {
		res := phone.NewResolver(phone.LenientPolicy{}).Resolve(&mismatch)
		if res.Number != "+14155552671" {
			t.Fatalf("expected lenient acceptance, got %q", res.Number)
		}
	})

	t.Run("strict rejects a country mismatch", func(t *testing.T) {
		res := phone.NewResolver(phone.StrictPolicy{}).Resolve(&mismatch)
		if res.Eligible() {
			t.Fatalf("expected strict rejection, got %q", res.Number)
		}
	})

	t.Run("strict accepts a matching country", func(t *testing.T) {
		c := domain.Contact{DirectPhoneE164: "+441144960000", Country: "United Kingdom"}
		res := phone.NewResolver(phone.StrictPolicy{}).Resolve(&c)
		if res.Number != "+441144960000" {
			t.Fatalf("expected strict acceptance, got %q", res.Number)
		}
	})

	t.Run("hybrid trusts contact numbers but not HQ", func(t *testing.T) {
		r := phone.NewResolver(phone.HybridPolicy{})

		if res := r.Resolve(&mismatch); res.Number != "+14155552671" {
			t.Fatalf("expected hybrid to trust the contact number, got %q", res.Number)
		}

		hqMismatch := domain.Contact{
			AccountPhone:   "+14155552671",
			AccountCountry: "United Kingdom",
		}
		if res := r.Resolve(&hqMismatch); res.Eligible() {
			t.Fatalf("expected hybrid to reject mismatched HQ number, got %q", res.Number)
		}
	})
}

func TestPolicyFromName(t *testing.T) {
	if _, ok := phone.PolicyFromName("strict").(phone.StrictPolicy); !ok {
		t.Error("expected StrictPolicy for \"strict\"")
	}
	if _, ok := phone.PolicyFromName("HYBRID").(phone.HybridPolicy); !ok {
		t.Error("expected HybridPolicy for \"HYBRID\"")
	}
	if _, ok := phone.PolicyFromName("").(phone.LenientPolicy); !ok {
		t.Error("expected LenientPolicy fallback for empty name")
	}
}

func TestRegionForCountry(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"United Kingdom", "GB"},
		{"  united kingdom  ", "GB"},
		{"USA", "US"},
		{"de", "DE"},
		{"GB", "GB"},
		{"Atlantis", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := phone.RegionForCountry(tc.country); got != tc.want {
			t.Errorf("RegionForCountry(%q) = %q, want %q", tc.country, got, tc.want)
		}
	}
}
