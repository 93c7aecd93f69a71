package phone

import "strings"

// countryRegions maps the country names that appear in CRM data to ISO 3166
// alpha-2 region codes. Matching is case-insensitive on the trimmed name.
// Two-letter values pass through RegionForCountry unchanged, so records that
// already store ISO codes need no entry here.
var countryRegions = map[string]string{
	"united states":         "US",
	"united states of america": "US",
	"usa":                   "US",
	"canada":                "CA",
	"united kingdom":        "GB",
	"great britain":         "GB",
	"england":               "GB",
	"scotland":              "GB",
	"wales":                 "GB",
	"northern ireland":      "GB",
	"ireland":               "IE",
	"germany":               "DE",
	"france":                "FR",
	"spain":                 "ES",
	"portugal":              "PT",
	"italy":                 "IT",
	"netherlands":           "NL",
	"the netherlands":       "NL",
	"belgium":               "BE",
	"luxembourg":            "LU",
	"switzerland":           "CH",
	"austria":               "AT",
	"denmark":               "DK",
	"sweden":                "SE",
	"norway":                "NO",
	"finland":               "FI",
	"iceland":               "IS",
	"poland":                "PL",
	"czech republic":        "CZ",
	"czechia":               "CZ",
	"slovakia":              "SK",
	"hungary":               "HU",
	"romania":               "RO",
	"bulgaria":              "BG",
	"greece":                "GR",
	"turkey":                "TR",
	"russia":                "RU",
	"ukraine":               "UA",
	"estonia":               "EE",
	"latvia":                "LV",
	"lithuania":             "LT",
	"croatia":               "HR",
	"slovenia":              "SI",
	"serbia":                "RS",
	"israel":                "IL",
	"united arab emirates":  "AE",
	"uae":                   "AE",
	"saudi arabia":          "SA",
	"qatar":                 "QA",
	"south africa":          "ZA",
	"egypt":                 "EG",
	"nigeria":               "NG",
	"kenya":                 "KE",
	"india":                 "IN",
	"pakistan":              "PK",
	"bangladesh":            "BD",
	"sri lanka":             "LK",
	"china":                 "CN",
	"hong kong":             "HK",
	"taiwan":                "TW",
	"japan":                 "JP",
	"south korea":           "KR",
	"republic of korea":     "KR",
	"singapore":             "SG",
	"malaysia":              "MY",
	"indonesia":             "ID",
	"thailand":              "TH",
	"vietnam":               "VN",
	"philippines":           "PH",
	"australia":             "AU",
	"new zealand":           "NZ",
	"brazil":                "BR",
	"argentina":             "AR",
	"chile":                 "CL",
	"colombia":              "CO",
	"peru":                  "PE",
	"mexico":                "MX",
}

// RegionForCountry resolves a stored country value to an ISO region code.
// Returns "" when the country is unknown, which makes region-scoped parsing
// unavailable for that contact (international-format input still works).
func RegionForCountry(country string) string {
	c := strings.TrimSpace(country)
	if c == "" {
		return ""
	}
	if len(c) == 2 {
		return strings.ToUpper(c)
	}
	if region, ok := countryRegions[strings.ToLower(c)]; ok {
		return region
	}
	return ""
}
