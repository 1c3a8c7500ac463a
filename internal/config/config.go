// Package config handles loading and validation of service configuration.
// Supports both development (env vars, files) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"

	"oil-config/internal/oilconfig"
)

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultPort           = "8080"
	DefaultEnvironment    = "development"
	DefaultLogLevel       = "info"
	DefaultBannerSecret   = "oil-banner-config"
	DefaultReleaseRefresh = time.Hour
)

// Config holds all service configuration.
// Environment determines whether the banner record loads from env/file (development)
// or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string
	Environment string // "development", "test" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject   string
	BannerSecret string

	// GeoIPDatabase is an MMDB country database; empty disables geolocation.
	GeoIPDatabase string

	// ReleaseManifestURL enables release tracking for the default hub path.
	// Empty pins the hub path to the build version.
	ReleaseManifestURL string
	ReleaseRefresh     time.Duration

	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string

	// Banner is the page configuration record every session starts from.
	Banner oilconfig.RawConfig
}

// LoadEnv overlays .env and .env.dev from the working directory onto the
// process environment, if present. Later files win.
func LoadEnv(logger *slog.Logger) {
	files := []string{".env", ".env.dev"}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			if logger != nil {
				logger.Warn("failed to load env file", "file", file, "error", err)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger != nil && len(loaded) > 0 {
		logger.Debug("loaded env files", "files", strings.Join(loaded, ", "))
	}
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Validates all fields and returns an error naming the first bad one.
func Load(ctx context.Context) (*Config, error) {
	// If CONFIG_FILE is set, load everything from the JSON file
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	cfg := &Config{
		Port:               envOrDefault("PORT", DefaultPort),
		Environment:        envOrDefault("ENVIRONMENT", DefaultEnvironment),
		LogLevel:           envOrDefault("LOG_LEVEL", DefaultLogLevel),
		GCPProject:         os.Getenv("GCP_PROJECT"),
		BannerSecret:       envOrDefault("BANNER_CONFIG_SECRET", DefaultBannerSecret),
		GeoIPDatabase:      os.Getenv("GEOIP_DATABASE"),
		ReleaseManifestURL: os.Getenv("RELEASE_MANIFEST_URL"),
		AllowedOrigins:     splitList(os.Getenv("ALLOWED_ORIGINS")),
	}

	refresh, err := parseDuration(os.Getenv("RELEASE_REFRESH"), DefaultReleaseRefresh)
	if err != nil {
		return nil, fmt.Errorf("invalid RELEASE_REFRESH: %w", err)
	}
	cfg.ReleaseRefresh = refresh

	// Load the banner record based on environment
	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		err = cfg.loadBannerFromSecretManager(ctx)
	} else {
		err = cfg.loadBannerFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading banner config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file. Comments and trailing
// commas are allowed. Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Use a struct that matches the JSON structure
	var fileConfig struct {
		Port               string          `json:"port"`
		Environment        string          `json:"environment"`
		LogLevel           string          `json:"log_level"`
		GCPProject         string          `json:"gcp_project"`
		GeoIPDatabase      string          `json:"geoip_database"`
		ReleaseManifestURL string          `json:"release_manifest_url"`
		ReleaseRefresh     string          `json:"release_refresh"`
		AllowedOrigins     []string        `json:"allowed_origins"`
		Banner             json.RawMessage `json:"banner"`
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:               withDefault(fileConfig.Port, DefaultPort),
		Environment:        withDefault(fileConfig.Environment, DefaultEnvironment),
		LogLevel:           withDefault(fileConfig.LogLevel, DefaultLogLevel),
		GCPProject:         fileConfig.GCPProject,
		GeoIPDatabase:      fileConfig.GeoIPDatabase,
		ReleaseManifestURL: fileConfig.ReleaseManifestURL,
		AllowedOrigins:     fileConfig.AllowedOrigins,
		Banner:             oilconfig.RawConfig{},
	}

	refresh, err := parseDuration(fileConfig.ReleaseRefresh, DefaultReleaseRefresh)
	if err != nil {
		return nil, fmt.Errorf("invalid release_refresh: %w", err)
	}
	cfg.ReleaseRefresh = refresh

	if len(fileConfig.Banner) > 0 {
		banner, err := oilconfig.ParseRaw(fileConfig.Banner)
		if err != nil {
			return nil, fmt.Errorf("invalid banner: %w", err)
		}
		cfg.Banner = banner
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadBannerFromSecretManager fetches the banner record from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{secret}/versions/latest
func (c *Config) loadBannerFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.BannerSecret)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	banner, err := oilconfig.ParseRaw(result.Payload.Data)
	if err != nil {
		return fmt.Errorf("parsing secret %s: %w", secretName, err)
	}
	c.Banner = banner
	return nil
}

// loadBannerFromEnv reads the banner record from BANNER_CONFIG (inline JSON)
// or BANNER_CONFIG_FILE. With neither set every session starts from defaults.
func (c *Config) loadBannerFromEnv() error {
	c.Banner = oilconfig.RawConfig{}

	var (
		data   []byte
		source string
	)
	switch {
	case os.Getenv("BANNER_CONFIG") != "":
		data, source = []byte(os.Getenv("BANNER_CONFIG")), "BANNER_CONFIG"
	case os.Getenv("BANNER_CONFIG_FILE") != "":
		path := os.Getenv("BANNER_CONFIG_FILE")
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading BANNER_CONFIG_FILE: %w", err)
		}
		data, source = b, path
	default:
		return nil
	}

	banner, err := oilconfig.ParseRaw(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", source, err)
	}
	c.Banner = banner
	return nil
}

// validate checks that all configuration fields are well-formed.
func (c *Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}

	switch c.Environment {
	case "development", "test", "production":
	default:
		return fmt.Errorf("invalid environment %q (want development, test or production)", c.Environment)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	if c.ReleaseManifestURL != "" {
		u, err := url.Parse(c.ReleaseManifestURL)
		if err != nil {
			return fmt.Errorf("invalid release_manifest_url: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid release_manifest_url %q: must be an absolute http(s) URL", c.ReleaseManifestURL)
		}
	}

	if c.ReleaseRefresh < 0 {
		return fmt.Errorf("release_refresh must not be negative")
	}

	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid allowed origin %q", origin)
		}
	}

	return nil
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// parseDuration parses s, returning def for an empty string.
func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s = strings.TrimSpace(s); s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
