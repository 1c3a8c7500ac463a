package geo

import "strings"

// gdprCountries lists where consent gating applies: the EU member states,
// the EEA members outside the EU, and the United Kingdom (UK GDPR).
var gdprCountries = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true,
	"DK": true, "EE": true, "FI": true, "FR": true, "DE": true, "GR": true,
	"HU": true, "IE": true, "IT": true, "LV": true, "LT": true, "LU": true,
	"MT": true, "NL": true, "PL": true, "PT": true, "RO": true, "SK": true,
	"SI": true, "ES": true, "SE": true,

	// EEA
	"IS": true, "LI": true, "NO": true,

	"GB": true,
}

// aliases are non-ISO spellings for the UK and Greece seen in hand-written headers.
var aliases = map[string]bool{"UK": true, "EL": true}

// AppliesIn reports whether GDPR consent rules apply to visitors from country.
// Only a known country outside the EEA and the UK opts out; anything
// unrecognised reports true.
func AppliesIn(country string) bool {
	code := normalize(country)
	if _, ok := isoCountries[code]; !ok {
		return true
	}
	return gdprCountries[code]
}

// Known reports whether country is an assigned ISO 3166-1 alpha-2 code
// or one of the accepted aliases. Reserved codes such as EU, ZZ and XX are not.
func Known(country string) bool {
	code := normalize(country)
	_, ok := isoCountries[code]
	return ok || aliases[code]
}

func normalize(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}
