package oilconfig

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"oil-config/internal/release"
)

// recordingHandler keeps every log record so tests can assert on warnings.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) warnings() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []slog.Record
	for _, r := range h.records {
		if r.Level == slog.LevelWarn {
			out = append(out, r)
		}
	}
	return out
}

// loadFixture parses testdata/<name>.jsonc.
func loadFixture(t *testing.T, name string) RawConfig {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name+".jsonc"))
	if err != nil {
		t.Fatalf("reading fixture %s: %v", name, err)
	}
	raw, err := ParseRaw(data)
	if err != nil {
		t.Fatalf("parsing fixture %s: %v", name, err)
	}
	return raw
}

// newTestResolver returns a resolver with a recording logger and release 1.2.3.
func newTestResolver(raw RawConfig) (*Resolver, *recordingHandler) {
	h := &recordingHandler{}
	r := New(raw,
		WithLogger(slog.New(h)),
		WithReleaseVersioner(release.Static("1.2.3")),
	)
	return r, h
}
