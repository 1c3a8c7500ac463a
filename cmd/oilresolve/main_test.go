package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"oil-config/internal/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.jsonc")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args []string, stdin string) (model.BannerSettings, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	if err := run(args, strings.NewReader(stdin), &stdout, &stderr); err != nil {
		t.Fatalf("run(%v) error: %v\nstderr: %s", args, err, stderr.String())
	}
	var settings model.BannerSettings
	if err := json.Unmarshal(stdout.Bytes(), &settings); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, stdout.String())
	}
	return settings, stdout.String(), stderr.String()
}

func TestRunFromFile(t *testing.T) {
	path := writeConfig(t, `{
		// legacy shape
		"locale": "deDE_01",
		"publicPath": "//cdn.example.com/oil",
	}`)

	got, _, stderr := runCLI(t, []string{"--release", "v1.4", path}, "")

	if got.LocaleVariantName != "deDE_01" || got.Language != "de" {
		t.Errorf("locale = %s/%s, want deDE_01/de", got.LocaleVariantName, got.Language)
	}
	if got.LocaleURL != "https://oil-backend.herokuapp.com/oil/api/userViewLocales/deDE_01" {
		t.Errorf("LocaleURL = %q", got.LocaleURL)
	}
	if got.PublicPath != "//cdn.example.com/oil/" {
		t.Errorf("PublicPath = %q", got.PublicPath)
	}
	if got.HubPath != "/@ideasio/oil.js@1.4.0/release/current/hub.html" {
		t.Errorf("HubPath = %q", got.HubPath)
	}
	if !strings.Contains(stderr, "deprecated") {
		t.Errorf("stderr missing deprecation warning: %q", stderr)
	}
}

func TestRunFromStdinWithHints(t *testing.T) {
	got, _, _ := runCLI(t, []string{"--locale", "frFR_01", "--country", "us", "--compact"}, `{"gdpr_applies_globally": true}`)

	if got.LocaleVariantName != "frFR_01" {
		t.Errorf("LocaleVariantName = %q, want frFR_01", got.LocaleVariantName)
	}
	if got.GDPRApplies {
		t.Error("GDPRApplies = true, want false for a US visitor")
	}
}

func TestRunGDPRFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"unset keeps configuration", nil, false},
		{"forced on", []string{"--gdpr"}, true},
		{"forced on beats country", []string{"--gdpr=true", "--country", "US"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, _ := runCLI(t, tt.args, `{"gdpr_applies": false}`)
			if got.GDPRApplies != tt.want {
				t.Errorf("GDPRApplies = %v, want %v", got.GDPRApplies, tt.want)
			}
		})
	}
}

func TestRunKey(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-k", "locale_url"}, strings.NewReader(`{"locale": "foo"}`), &stdout, &stderr)
	if err != nil {
		t.Fatalf("run() error: %v", err)
	}

	var got string
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if got != "https://oil-backend.herokuapp.com/oil/api/userViewLocales/foo" {
		t.Errorf("locale_url = %q", got)
	}

	stdout.Reset()
	if err := run([]string{"--key", "hub_path"}, strings.NewReader(`{}`), &stdout, &stderr); err != nil {
		t.Fatalf("run() error: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "null" {
		t.Errorf("absent key output = %q, want null", stdout.String())
	}
}

func TestRunManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"versions": ["1.2.0", "1.10.1", "2.0.0-rc.1"]}`))
	}))
	defer srv.Close()

	got, _, _ := runCLI(t, []string{"--manifest", srv.URL}, `{}`)
	if got.HubPath != "/@ideasio/oil.js@1.10.1/release/current/hub.html" {
		t.Errorf("HubPath = %q, want release 1.10.1", got.HubPath)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   string
		wantErr string
	}{
		{"invalid json", nil, `{"locale":`, "parsing page config"},
		{"missing file", []string{"/nonexistent/site.json"}, "", "reading page config"},
		{"two files", []string{"a.json", "b.json"}, "", "unexpected argument"},
		{"ip without database", []string{"--ip", "81.2.69.142"}, "{}", "--ip requires --geoip"},
		{"bad country", []string{"--country", "USA"}, "{}", "invalid --country"},
		{"unassigned country", []string{"--country", "ZZ"}, "{}", "invalid --country"},
		{"release and manifest", []string{"--release", "1.0.0", "--manifest", "http://example.com"}, "{}", "mutually exclusive"},
		{"missing geoip database", []string{"--geoip", "/nonexistent/db.mmdb", "--ip", "81.2.69.142"}, "{}", "not found"},
		{"unknown flag", []string{"--colour"}, "{}", "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, strings.NewReader(tt.stdin), &stdout, &stderr)
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"--help"}, strings.NewReader(""), &stdout, &stderr); err != nil {
		t.Fatalf("run(--help) error: %v", err)
	}
	if !strings.Contains(stderr.String(), "Usage:") || !strings.Contains(stderr.String(), "--locale") {
		t.Errorf("help output missing usage: %s", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("help wrote to stdout: %s", stdout.String())
	}
}
