package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"oil-config/internal/transport"
)

// DefaultTTL applies when the manifest response carries no cache headers.
const DefaultTTL = 15 * time.Minute

// DefaultFetchTimeout bounds a single manifest request.
const DefaultFetchTimeout = 5 * time.Second

// Manifest is the published release index.
// Latest is preferred; Versions is consulted when Latest is missing or not semver.
type Manifest struct {
	Latest   string   `json:"latest"`
	Versions []string `json:"versions,omitempty"`
}

// TrackerConfig configures a Tracker.
type TrackerConfig struct {
	ManifestURL  string            // Empty disables fetching; the fallback is always reported
	Fallback     string            // Reported until a manifest has been fetched
	DefaultTTL   time.Duration     // TTL when cache headers are absent
	FetchTimeout time.Duration     // HTTP timeout per request
	Transport    http.RoundTripper // Nil uses the Chrome-fingerprint transport
	Logger       *slog.Logger
}

// Tracker follows the release manifest. LatestReleaseVersion never blocks:
// it returns the last good value, and failed refreshes keep it.
type Tracker struct {
	client *http.Client
	config TrackerConfig
	logger *slog.Logger

	mu        sync.RWMutex
	latest    string
	etag      string
	expiresAt time.Time
}

// NewTracker creates a tracker. No request is made until Refresh or Run.
func NewTracker(config TrackerConfig) *Tracker {
	if config.DefaultTTL == 0 {
		config.DefaultTTL = DefaultTTL
	}
	if config.FetchTimeout == 0 {
		config.FetchTimeout = DefaultFetchTimeout
	}
	if config.Transport == nil {
		config.Transport = transport.NewChromeTransport(config.FetchTimeout)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Tracker{
		client: &http.Client{
			Timeout:   config.FetchTimeout,
			Transport: config.Transport,
		},
		config: config,
		logger: logger,
		latest: Normalize(config.Fallback),
	}
}

// LatestReleaseVersion returns the newest known release.
func (t *Tracker) LatestReleaseVersion() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latest
}

// Refresh fetches the manifest unless the cached copy is still fresh.
// On error the previously known version is kept.
func (t *Tracker) Refresh(ctx context.Context) error {
	if t.config.ManifestURL == "" {
		return nil
	}

	t.mu.RLock()
	fresh := t.expiresAt.After(time.Now())
	etag := t.etag
	t.mu.RUnlock()
	if fresh {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.config.ManifestURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch release manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && etag != "" {
		t.store("", resp)
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, t.config.ManifestURL)
	}

	// Manifests are tiny; anything past 1MB is not one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return fmt.Errorf("parse release manifest: %w", err)
	}

	latest := manifest.Latest
	if !IsStable(latest) {
		latest = Newest(manifest.Versions)
	}
	if latest == "" {
		return fmt.Errorf("release manifest lists no stable version")
	}

	t.store(Normalize(latest), resp)
	return nil
}

// Run refreshes every interval until ctx is done. Errors are logged, not returned.
// A non-positive interval refreshes once.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	if t.config.ManifestURL == "" {
		return
	}
	t.refreshAndLog(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.refreshAndLog(ctx)
		}
	}
}

func (t *Tracker) refreshAndLog(ctx context.Context) {
	if err := t.Refresh(ctx); err != nil {
		t.logger.Warn("release manifest refresh failed",
			slog.String("url", t.config.ManifestURL),
			slog.String("error", err.Error()),
			slog.String("keeping", t.LatestReleaseVersion()))
		return
	}
	t.logger.Debug("release manifest refreshed", slog.String("latest", t.LatestReleaseVersion()))
}

// store records a fetched version ("" keeps the current one) and the cache metadata.
func (t *Tracker) store(latest string, resp *http.Response) {
	ttl := parseCacheTTL(resp, t.config.DefaultTTL)

	t.mu.Lock()
	defer t.mu.Unlock()
	if latest != "" {
		t.latest = latest
	}
	if etag := resp.Header.Get("ETag"); etag != "" {
		t.etag = etag
	}
	t.expiresAt = time.Now().Add(ttl)
}

// parseCacheTTL extracts TTL from HTTP cache headers.
// Priority: max-age in Cache-Control, then Expires header, then the default.
func parseCacheTTL(resp *http.Response, def time.Duration) time.Duration {
	if cc := resp.Header.Get("Cache-Control"); cc != "" {
		for _, directive := range strings.Split(cc, ",") {
			directive = strings.TrimSpace(directive)
			if directive == "no-cache" || directive == "no-store" {
				return 0
			}
			if strings.HasPrefix(directive, "max-age=") {
				if seconds, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age=")); err == nil && seconds >= 0 {
					return time.Duration(seconds) * time.Second
				}
			}
		}
	}

	if expires := resp.Header.Get("Expires"); expires != "" {
		if t, err := http.ParseTime(expires); err == nil {
			if ttl := time.Until(t); ttl > 0 {
				return ttl
			}
		}
	}

	return def
}
