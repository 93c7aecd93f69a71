package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/dialhub/callqueue/internal/domain"
)

// Source identifies which contact field an eligible number came from.
type Source string

const (
	SourceDirect Source = "direct"
	SourceMobile Source = "mobile"
	SourceHQ     Source = "hq"
)

// Resolution is the outcome of eligibility resolution for one contact.
// A zero Resolution means no eligible phone was found.
type Resolution struct {
	Number string `json:"number"`
	Source Source `json:"source"`
}

// Eligible reports whether a dialable number was resolved.
func (r Resolution) Eligible() bool { return r.Number != "" }

// Policy decides whether a structurally valid parsed number is eligible.
// Observed deployments disagree on whether the number's region must match
// the contact's stated country, so the rule is injected rather than fixed.
type Policy interface {
	// Accept is called only with numbers that already passed structural
	// validation. region is the ISO region derived from the contact's (or,
	// for SourceHQ, the account's) stated country; empty when unknown.
	Accept(num *phonenumbers.PhoneNumber, region string, source Source) bool
}

// LenientPolicy accepts any structurally valid number regardless of whether
// its region matches the stated country. Maximizes queue coverage.
type LenientPolicy struct{}

func (LenientPolicy) Accept(*phonenumbers.PhoneNumber, string, Source) bool { return true }

// StrictPolicy requires the parsed number's region to equal the stated
// country for every source. Contacts with an unknown country are rejected.
type StrictPolicy struct{}

func (StrictPolicy) Accept(num *phonenumbers.PhoneNumber, region string, _ Source) bool {
	return region != "" && phonenumbers.GetRegionCodeForNumber(num) == region
}

// HybridPolicy trusts contact-owned numbers unconditionally but applies the
// strict region match to the account-HQ fallback, where a shared switchboard
// number in the wrong country is most likely to be stale data.
type HybridPolicy struct{}

func (HybridPolicy) Accept(num *phonenumbers.PhoneNumber, region string, source Source) bool {
	if source != SourceHQ {
		return true
	}
	return region != "" && phonenumbers.GetRegionCodeForNumber(num) == region
}

// PolicyFromName maps a config value to a Policy. Unknown names fall back to
// lenient, the coverage-maximizing default.
func PolicyFromName(name string) Policy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "strict":
		return StrictPolicy{}
	case "hybrid":
		return HybridPolicy{}
	default:
		return LenientPolicy{}
	}
}

// Resolver decides which of a contact's phone numbers, if any, is eligible
// to dial, and returns it in E.164 form.
//
// Parse failures are expected in bulk on legacy data and are swallowed
// without logging; the caller sees an empty Resolution.
type Resolver struct {
	policy Policy
}

func NewResolver(policy Policy) *Resolver {
	if policy == nil {
		policy = LenientPolicy{}
	}
	return &Resolver{policy: policy}
}

// Resolve runs the eligibility cascade, accepting the first candidate that
// parses to a structurally valid number and passes the policy:
//
//  1. already-normalized E.164 direct, then mobile
//  2. raw direct, then raw mobile, parsed against the contact's country
//  3. the account HQ phone, parsed against the account's country
func (r *Resolver) Resolve(c *domain.Contact) Resolution {
	contactRegion := RegionForCountry(c.Country)

	if res, ok := r.try(c.DirectPhoneE164, contactRegion, SourceDirect); ok {
		return res
	}
	if res, ok := r.try(c.MobilePhoneE164, contactRegion, SourceMobile); ok {
		return res
	}
	if res, ok := r.try(c.DirectPhone, contactRegion, SourceDirect); ok {
		return res
	}
	if res, ok := r.try(c.MobilePhone, contactRegion, SourceMobile); ok {
		return res
	}

	accountRegion := RegionForCountry(c.AccountCountry)
	if res, ok := r.try(c.AccountPhone, accountRegion, SourceHQ); ok {
		return res
	}

	return Resolution{}
}

// try parses one candidate. With a known region the parse resolves trunk
// prefixes (a leading national "0" becomes the country dial code); without
// one only international "+..." input can succeed.
func (r *Resolver) try(raw, region string, source Source) (Resolution, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Resolution{}, false
	}

	parseRegion := region
	if parseRegion == "" {
		parseRegion = phonenumbers.UNKNOWN_REGION
	}

	num, err := phonenumbers.Parse(raw, parseRegion)
	if err != nil && parseRegion != phonenumbers.UNKNOWN_REGION {
		// Region-scoped parse failed; the raw value may already be in
		// international format for some other country.
		num, err = phonenumbers.Parse(raw, phonenumbers.UNKNOWN_REGION)
	}
	if err != nil {
		return Resolution{}, false
	}
	if !phonenumbers.IsValidNumber(num) {
		return Resolution{}, false
	}
	if !r.policy.Accept(num, region, source) {
		return Resolution{}, false
	}

	return Resolution{
		Number: phonenumbers.Format(num, phonenumbers.E164),
		Source: source,
	}, true
}
