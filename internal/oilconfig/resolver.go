package oilconfig

import (
	"log/slog"
	"sync"

	"oil-config/internal/release"
)

// ReleaseVersioner reports the latest published banner release, e.g. "1.2.3".
// Used only when the hub path has to be synthesized.
type ReleaseVersioner interface {
	LatestReleaseVersion() string
}

// ReleaseVersionFunc adapts a plain function to ReleaseVersioner.
type ReleaseVersionFunc func() string

// LatestReleaseVersion calls f.
func (f ReleaseVersionFunc) LatestReleaseVersion() string { return f() }

// Resolver is the typed, defaulted view of one session's page configuration.
// A Resolver is safe for concurrent use; every method observes the most recent write.
type Resolver struct {
	mu       sync.Mutex
	raw      RawConfig
	logger   *slog.Logger
	versions ReleaseVersioner

	// Synthesized locale URL, computed at most once per load.
	localeURL         string
	localeURLResolved bool

	// Set when the current string locale came from a session hint rather than the record.
	localeFromHint bool

	// Nil until the first GDPRApplies read or an explicit SetGDPRApplies.
	gdprApplies *bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger deprecation warnings are written to.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReleaseVersioner sets the collaborator consulted for the default hub path.
func WithReleaseVersioner(v ReleaseVersioner) Option {
	return func(r *Resolver) {
		if v != nil {
			r.versions = v
		}
	}
}

// New creates a resolver over raw. The resolver owns raw from here on;
// callers sharing a record between sessions should pass raw.Clone().
func New(raw RawConfig, opts ...Option) *Resolver {
	r := &Resolver{
		logger:   slog.Default(),
		versions: release.Static(release.Normalize(release.Version)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.load(raw)
	return r
}

// Reset replaces the whole record and forgets all derived state:
// GDPR applicability goes back to unresolved and the locale URL is recomputed on next use.
func (r *Resolver) Reset(raw RawConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load(raw)
}

func (r *Resolver) load(raw RawConfig) {
	if raw == nil {
		raw = RawConfig{}
	}
	r.raw = raw
	r.localeURL = ""
	r.localeURLResolved = false
	r.localeFromHint = false
	r.gdprApplies = nil
}

// Value returns the stored value for key, or def when the key is absent or nil.
// No coercion is applied in either direction.
func (r *Resolver) Value(key string, def any) any {
	return withLock(r, func(r *Resolver) any { return r.value(key, def) })
}

func (r *Resolver) value(key string, def any) any {
	v, ok := r.raw[key]
	if !ok || v == nil {
		if key == KeyLocaleURL && r.localeURLResolved && r.localeURL != "" {
			return r.localeURL
		}
		return def
	}
	return v
}

// ValueOf is the typed form of Value. A stored value of a different type counts
// as absent, except that integer settings accept any whole-number encoding.
func ValueOf[T any](r *Resolver, key string, def T) T {
	return withLock(r, func(r *Resolver) T { return lookup(r, key, def) })
}

func lookup[T any](r *Resolver, key string, def T) T {
	v := r.value(key, nil)
	if v == nil {
		return def
	}
	if t, ok := v.(T); ok {
		return t
	}
	if _, wantInt := any(def).(int); wantInt {
		if n, ok := asInt(v); ok {
			return any(n).(T)
		}
	}
	return def
}

func withLock[T any](r *Resolver, f func(*Resolver) T) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return f(r)
}
