package oilconfig

import "log/slog"

// DefaultLocaleVariant is used whenever the record names no usable locale.
const DefaultLocaleVariant = "enEN_01"

// DefaultLanguage is returned by LanguageFromLocale for an empty variant name.
const DefaultLanguage = "en"

// LocaleBackendURL is the prefix locale URLs are synthesized from.
const LocaleBackendURL = "https://oil-backend.herokuapp.com/oil/api/userViewLocales/"

// LocaleKind tags the shape the locale field was supplied in.
type LocaleKind int

const (
	// LocaleAbsent covers a missing, empty or unrecognizable locale field.
	LocaleAbsent LocaleKind = iota
	// LocaleString is the legacy shape: a bare variant name.
	LocaleString
	// LocaleObject is the current shape: {"localeId": "..."}.
	LocaleObject
)

func (k LocaleKind) String() string {
	switch k {
	case LocaleString:
		return "string"
	case LocaleObject:
		return "object"
	default:
		return "absent"
	}
}

// LocaleSpec is the parsed form of the locale field.
type LocaleSpec struct {
	Kind LocaleKind
	// Name is set for LocaleString.
	Name string
	// LocaleID is set for LocaleObject when the object carries one.
	LocaleID string
}

// ParseLocaleSpec classifies a raw locale value. It never fails.
func ParseLocaleSpec(v any) LocaleSpec {
	switch l := v.(type) {
	case string:
		if l == "" {
			return LocaleSpec{}
		}
		return LocaleSpec{Kind: LocaleString, Name: l}
	case map[string]any:
		id, _ := l["localeId"].(string)
		return LocaleSpec{Kind: LocaleObject, LocaleID: id}
	case RawConfig:
		id, _ := l["localeId"].(string)
		return LocaleSpec{Kind: LocaleObject, LocaleID: id}
	case map[string]string:
		return LocaleSpec{Kind: LocaleObject, LocaleID: l["localeId"]}
	}
	return LocaleSpec{}
}

// VariantName reduces either shape to a canonical variant name.
func (s LocaleSpec) VariantName() string {
	switch s.Kind {
	case LocaleString:
		return s.Name
	case LocaleObject:
		if s.LocaleID != "" {
			return s.LocaleID
		}
	}
	return DefaultLocaleVariant
}

// LanguageFromLocale returns the language code of a variant name, i.e. its first
// two characters. No validation against a locale table is done.
func LanguageFromLocale(variantName string) string {
	if variantName == "" {
		return DefaultLanguage
	}
	runes := []rune(variantName)
	if len(runes) < 2 {
		return variantName
	}
	return string(runes[:2])
}

// LocaleURLFor builds the backend URL for a variant name.
func LocaleURLFor(variantName string) string {
	return LocaleBackendURL + variantName
}

// SetLocale overwrites the locale field with a bare variant name.
func (r *Resolver) SetLocale(value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw[KeyLocale] = value
	r.localeFromHint = false
}

// SetLocaleHint overwrites the locale like SetLocale, for a variant chosen by the
// visitor's session. A URL synthesized from it is not reported as deprecated.
func (r *Resolver) SetLocaleHint(value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw[KeyLocale] = value
	r.localeFromHint = true
}

// Locale returns the raw locale field. Reading it also settles the locale URL,
// so a legacy string locale is reported as deprecated on first use.
func (r *Resolver) Locale() any {
	return withLock(r, func(r *Resolver) any {
		r.resolveLocaleURL()
		return r.value(KeyLocale, nil)
	})
}

// LocaleSpec returns the parsed locale field.
func (r *Resolver) LocaleSpec() LocaleSpec {
	return withLock(r, func(r *Resolver) LocaleSpec { return ParseLocaleSpec(r.raw[KeyLocale]) })
}

// LocaleVariantName returns the canonical variant name, DefaultLocaleVariant when unset.
func (r *Resolver) LocaleVariantName() string {
	return withLock(r, (*Resolver).localeVariantName)
}

func (r *Resolver) localeVariantName() string {
	return ParseLocaleSpec(r.raw[KeyLocale]).VariantName()
}

// LocaleURL returns the backend URL the banner loads its texts from.
//
// An explicit locale_url always wins. Otherwise a legacy string locale, or a missing
// locale, yields a synthesized URL that is remembered for the rest of the load.
// An object locale without locale_url yields "".
func (r *Resolver) LocaleURL() string {
	return withLock(r, (*Resolver).resolveLocaleURL)
}

func (r *Resolver) resolveLocaleURL() string {
	if u, ok := r.raw[KeyLocaleURL].(string); ok && u != "" {
		return u
	}
	if r.localeURLResolved {
		return r.localeURL
	}

	parsed := ParseLocaleSpec(r.raw[KeyLocale])
	switch parsed.Kind {
	case LocaleString:
		r.rememberLocaleURL(LocaleURLFor(parsed.Name))
		if !r.localeFromHint {
			r.warnDeprecated(localeStringDeprecation, slog.String("locale", parsed.Name))
		}
	case LocaleAbsent:
		r.rememberLocaleURL(LocaleURLFor(DefaultLocaleVariant))
	}
	return r.localeURL
}

func (r *Resolver) rememberLocaleURL(u string) {
	r.localeURL = u
	r.localeURLResolved = true
}
