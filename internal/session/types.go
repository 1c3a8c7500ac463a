// Package session carries per-request hints that adjust the resolved banner
// configuration: an explicit locale, an explicit GDPR decision, and the
// visitor's country.
//
// REST requests supply hints in the Oil-Context header (RFC 8941 dictionary);
// MCP tools pass them as tool arguments. Both end up in Hints.
package session

import (
	"oil-config/internal/geo"
	"oil-config/internal/oilconfig"
)

// Hints is what a request tells us about its session.
type Hints struct {
	// Locale overrides the configured locale with a bare variant name.
	Locale string

	// GDPR, when set, overrides applicability outright.
	GDPR *bool

	// Country is an ISO 3166-1 alpha-2 code, from the header or geolocation.
	Country string

	// ClientIP is the address the country was looked up for (for logging).
	ClientIP string
}

// Where the GDPR decision of a session came from.
const (
	GDPRFromConfig  = "config"
	GDPRFromHint    = "hint"
	GDPRFromCountry = "country"
)

// Outcome describes what Apply changed on a resolver.
type Outcome struct {
	LocaleHint bool
	GDPRSource string
	Country    string
}

// Apply pushes the hints into r. An explicit GDPR hint wins; otherwise a
// known country outside the GDPR area turns consent gating off.
func (h Hints) Apply(r *oilconfig.Resolver) Outcome {
	out := Outcome{GDPRSource: GDPRFromConfig, Country: h.Country}

	if h.Locale != "" {
		r.SetLocaleHint(h.Locale)
		out.LocaleHint = true
	}

	switch {
	case h.GDPR != nil:
		r.SetGDPRApplies(*h.GDPR)
		out.GDPRSource = GDPRFromHint
	case geo.Known(h.Country) && !geo.AppliesIn(h.Country):
		r.SetGDPRApplies(false)
		out.GDPRSource = GDPRFromCountry
	}
	return out
}

// contextKey is the type for context values to avoid collisions
type contextKey string

// HintsContextKey is the context key for storing Hints
const HintsContextKey contextKey = "oil.session"

// InvalidContext is the error code for a malformed Oil-Context header.
const InvalidContext = "invalid_context"
