package config

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"oil-config/internal/oilconfig"
)

// clearEnv blanks every variable Load reads, restoring them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "PORT", "ENVIRONMENT", "LOG_LEVEL", "GCP_PROJECT",
		"BANNER_CONFIG_SECRET", "BANNER_CONFIG", "BANNER_CONFIG_FILE",
		"GEOIP_DATABASE", "RELEASE_MANIFEST_URL", "RELEASE_REFRESH", "ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %s, want development", cfg.Environment)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.BannerSecret != DefaultBannerSecret {
		t.Errorf("BannerSecret = %s, want %s", cfg.BannerSecret, DefaultBannerSecret)
	}
	if cfg.ReleaseRefresh != time.Hour {
		t.Errorf("ReleaseRefresh = %v, want 1h", cfg.ReleaseRefresh)
	}
	if cfg.Banner == nil || len(cfg.Banner) != 0 {
		t.Errorf("Banner = %v, want empty record", cfg.Banner)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GEOIP_DATABASE", "/data/GeoLite2-Country.mmdb")
	t.Setenv("RELEASE_MANIFEST_URL", "https://cdn.example.com/oil/releases.json")
	t.Setenv("RELEASE_REFRESH", "15m")
	t.Setenv("ALLOWED_ORIGINS", "https://www.example.com, https://news.example.com,")
	t.Setenv("BANNER_CONFIG", `{"locale": "deDE_01", "cookie_expires_in_days": 14}`)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.ReleaseRefresh != 15*time.Minute {
		t.Errorf("ReleaseRefresh = %v, want 15m", cfg.ReleaseRefresh)
	}
	if diff := cmp.Diff([]string{"https://www.example.com", "https://news.example.com"}, cfg.AllowedOrigins); diff != "" {
		t.Errorf("AllowedOrigins mismatch (-want +got):\n%s", diff)
	}
	if cfg.Banner["locale"] != "deDE_01" {
		t.Errorf("Banner[locale] = %v, want deDE_01", cfg.Banner["locale"])
	}
	if cfg.Banner["cookie_expires_in_days"] != json.Number("14") {
		t.Errorf("Banner[cookie_expires_in_days] = %#v, want json.Number 14", cfg.Banner["cookie_expires_in_days"])
	}
}

func TestLoadBannerFromFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "banner.jsonc", `{
		// publisher overrides
		"publicPath": "https://cdn.example.com/oil",
		"gdpr_applies_globally": false,
	}`)
	t.Setenv("BANNER_CONFIG_FILE", path)

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	r := oilconfig.New(cfg.Banner, oilconfig.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if got := r.PublicPath(); got != "https://cdn.example.com/oil/" {
		t.Errorf("PublicPath() = %q", got)
	}
	if r.GDPRApplies() {
		t.Error("GDPRApplies() = true, want false")
	}
}

func TestLoadInlineBannerWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("BANNER_CONFIG", `{"theme": "dark"}`)
	t.Setenv("BANNER_CONFIG_FILE", "/nonexistent/banner.json")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Banner["theme"] != "dark" {
		t.Errorf("Banner[theme] = %v, want dark", cfg.Banner["theme"])
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "production without project",
			env:     map[string]string{"ENVIRONMENT": "production"},
			wantErr: "GCP_PROJECT required",
		},
		{
			name:    "invalid banner json",
			env:     map[string]string{"BANNER_CONFIG": `{"locale":`},
			wantErr: "parsing BANNER_CONFIG",
		},
		{
			name:    "missing banner file",
			env:     map[string]string{"BANNER_CONFIG_FILE": "/nonexistent/banner.json"},
			wantErr: "reading BANNER_CONFIG_FILE",
		},
		{
			name:    "invalid refresh",
			env:     map[string]string{"RELEASE_REFRESH": "hourly"},
			wantErr: "invalid RELEASE_REFRESH",
		},
		{
			name:    "invalid port",
			env:     map[string]string{"PORT": "http"},
			wantErr: "invalid port",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"PORT": "70000"},
			wantErr: "invalid port",
		},
		{
			name:    "unknown environment",
			env:     map[string]string{"ENVIRONMENT": "staging"},
			wantErr: "invalid environment",
		},
		{
			name:    "unknown log level",
			env:     map[string]string{"LOG_LEVEL": "verbose"},
			wantErr: "invalid log_level",
		},
		{
			name:    "relative manifest url",
			env:     map[string]string{"RELEASE_MANIFEST_URL": "/releases.json"},
			wantErr: "invalid release_manifest_url",
		},
		{
			name:    "bad origin",
			env:     map[string]string{"ALLOWED_ORIGINS": "example.com"},
			wantErr: "invalid allowed origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(context.Background())
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.jsonc", `{
		// local development
		"port": "9191",
		"environment": "test",
		"log_level": "debug",
		"release_refresh": "5m",
		"allowed_origins": ["*"],
		"banner": {
			"locale": {"localeId": "frFR_01"},
			"iabVendorWhitelist": [1, 2],
		},
	}`)
	t.Setenv("CONFIG_FILE", path)
	// File configuration ignores the environment.
	t.Setenv("PORT", "1234")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "9191" {
		t.Errorf("Port = %s, want 9191", cfg.Port)
	}
	if cfg.Environment != "test" {
		t.Errorf("Environment = %s, want test", cfg.Environment)
	}
	if cfg.ReleaseRefresh != 5*time.Minute {
		t.Errorf("ReleaseRefresh = %v, want 5m", cfg.ReleaseRefresh)
	}

	r := oilconfig.New(cfg.Banner, oilconfig.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if got := r.LocaleVariantName(); got != "frFR_01" {
		t.Errorf("LocaleVariantName() = %q, want frFR_01", got)
	}
	if diff := cmp.Diff([]int{1, 2}, r.IABVendorWhitelist()); diff != "" {
		t.Errorf("IABVendorWhitelist() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromFileWithoutBanner(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeFile(t, "config.json", `{"port": "8081"}`))

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Banner == nil || len(cfg.Banner) != 0 {
		t.Errorf("Banner = %v, want empty record", cfg.Banner)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %s, want development", cfg.Environment)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	t.Run("file not found", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", "/nonexistent/config.json")
		if _, err := Load(context.Background()); err == nil {
			t.Error("expected error for nonexistent file")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", writeFile(t, "config.json", "{invalid json"))
		if _, err := Load(context.Background()); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})

	t.Run("banner not an object", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", writeFile(t, "config.json", `{"banner": [1, 2]}`))
		_, err := Load(context.Background())
		if err == nil || !strings.Contains(err.Error(), "invalid banner") {
			t.Errorf("expected banner error, got: %v", err)
		}
	})

	t.Run("invalid refresh", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", writeFile(t, "config.json", `{"release_refresh": "soon"}`))
		_, err := Load(context.Background())
		if err == nil || !strings.Contains(err.Error(), "invalid release_refresh") {
			t.Errorf("expected release_refresh error, got: %v", err)
		}
	})
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OIL_TEST_A=base\nOIL_TEST_B=base\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env.dev"), []byte("OIL_TEST_B=dev\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("OIL_TEST_A", "")
	t.Setenv("OIL_TEST_B", "")

	LoadEnv(slog.New(slog.NewTextHandler(io.Discard, nil)))

	if got := os.Getenv("OIL_TEST_A"); got != "base" {
		t.Errorf("OIL_TEST_A = %q, want base", got)
	}
	if got := os.Getenv("OIL_TEST_B"); got != "dev" {
		t.Errorf("OIL_TEST_B = %q, want dev (later file wins)", got)
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_ENV_VAR", "custom")
	if got := envOrDefault("TEST_ENV_VAR", "default"); got != "custom" {
		t.Errorf("envOrDefault with set var = %q, want custom", got)
	}

	t.Setenv("TEST_ENV_VAR_UNSET", "")
	if got := envOrDefault("TEST_ENV_VAR_UNSET", "default"); got != "default" {
		t.Errorf("envOrDefault with unset var = %q, want default", got)
	}
}

func TestWithDefault(t *testing.T) {
	if got := withDefault("value", "default"); got != "value" {
		t.Errorf("withDefault(value, default) = %q, want value", got)
	}
	if got := withDefault("", "default"); got != "default" {
		t.Errorf("withDefault('', default) = %q, want default", got)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{" a , ,b ", []string{"a", "b"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitList(tt.in)); diff != "" {
			t.Errorf("splitList(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
