// oilresolve resolves a page configuration file into the effective banner
// settings and prints them as JSON. Handy for checking a publisher's config
// before it ships.
//
// Usage:
//
//	oilresolve [flags] [page-config.json]
//
// Examples:
//
//	oilresolve site.jsonc
//	oilresolve --locale deDE_01 --country US site.jsonc
//	oilresolve --geoip GeoLite2-Country.mmdb --ip 81.2.69.142 site.jsonc
//	cat site.json | oilresolve --key hub_path
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"oil-config/internal/geo"
	"oil-config/internal/oilconfig"
	"oil-config/internal/release"
	"oil-config/internal/session"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// options are the parsed command line.
type options struct {
	locale   string
	gdpr     *bool
	country  string
	ip       string
	geoip    string
	release  string
	manifest string
	key      string
	compact  bool
	input    string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	data, err := readInput(opts.input, stdin)
	if err != nil {
		return err
	}
	raw, err := oilconfig.ParseRaw(data)
	if err != nil {
		return err
	}

	// Deprecation warnings go to stderr so stdout stays valid JSON
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	versions, err := releaseVersions(context.Background(), opts, logger)
	if err != nil {
		return err
	}

	hints, err := sessionHints(opts)
	if err != nil {
		return err
	}

	r := oilconfig.New(raw,
		oilconfig.WithLogger(logger),
		oilconfig.WithReleaseVersioner(versions),
	)
	hints.Apply(r)

	var out any
	if opts.key != "" {
		if opts.key == oilconfig.KeyLocaleURL {
			r.LocaleURL()
		}
		out = r.Value(opts.key, nil)
	} else {
		out = r.Snapshot()
	}

	enc := json.NewEncoder(stdout)
	if !opts.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	var gdpr bool

	flagSet := pflag.NewFlagSet("oilresolve", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.locale, "locale", "", "locale variant to use instead of the configured one (e.g. deDE_01)")
	flagSet.BoolVar(&gdpr, "gdpr", true, "force GDPR applicability (--gdpr=false disables consent gating)")
	flagSet.StringVar(&opts.country, "country", "", "visitor country (ISO 3166-1 alpha-2)")
	flagSet.StringVar(&opts.ip, "ip", "", "visitor IP address, geolocated with --geoip")
	flagSet.StringVar(&opts.geoip, "geoip", "", "path to a MaxMind-format country database")
	flagSet.StringVar(&opts.release, "release", "", "banner release for the default hub path (default: build version)")
	flagSet.StringVar(&opts.manifest, "manifest", "", "release manifest URL to look up the latest release")
	flagSet.StringVarP(&opts.key, "key", "k", "", "print one stored setting instead of the resolved settings")
	flagSet.BoolVar(&opts.compact, "compact", false, "print compact JSON")
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	if flagSet.Changed("gdpr") {
		opts.gdpr = &gdpr
	}

	rest := flagSet.Args()
	switch len(rest) {
	case 0:
		opts.input = "-"
	case 1:
		opts.input = rest[0]
	default:
		return nil, fmt.Errorf("unexpected argument: %s", rest[1])
	}

	if opts.ip != "" && opts.geoip == "" {
		return nil, fmt.Errorf("--ip requires --geoip")
	}
	if opts.country != "" && !geo.Known(opts.country) {
		return nil, fmt.Errorf("invalid --country %q: want an ISO 3166-1 alpha-2 code", opts.country)
	}
	if opts.release != "" && opts.manifest != "" {
		return nil, fmt.Errorf("--release and --manifest are mutually exclusive")
	}

	return opts, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading page config: %w", err)
	}
	return data, nil
}

// releaseVersions picks the collaborator for the default hub path.
func releaseVersions(ctx context.Context, opts *options, logger *slog.Logger) (oilconfig.ReleaseVersioner, error) {
	switch {
	case opts.release != "":
		return release.Static(release.Normalize(opts.release)), nil
	case opts.manifest != "":
		tracker := release.NewTracker(release.TrackerConfig{
			ManifestURL: opts.manifest,
			Fallback:    release.Version,
			Logger:      logger,
		})
		if err := tracker.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("fetching release manifest: %w", err)
		}
		return tracker, nil
	default:
		return release.Static(release.Normalize(release.Version)), nil
	}
}

// sessionHints turns the flags into the hints a request would carry.
func sessionHints(opts *options) (session.Hints, error) {
	hints := session.Hints{
		Locale:  strings.TrimSpace(opts.locale),
		GDPR:    opts.gdpr,
		Country: strings.ToUpper(opts.country),
	}

	if opts.ip != "" && hints.Country == "" {
		locator, err := geo.Open(opts.geoip)
		if err != nil {
			return hints, err
		}
		if locator == nil {
			return hints, fmt.Errorf("geoip database %s not found", opts.geoip)
		}
		defer locator.Close()

		hints.ClientIP = opts.ip
		if country, ok := locator.Lookup(opts.ip); ok {
			hints.Country = country
		}
	}

	return hints, nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `oilresolve - resolve an OIL page configuration into banner settings

Reads the page configuration (JSON, comments allowed) from the given file or
stdin and prints the effective settings a visitor session would get.

Usage:
  oilresolve [flags] [page-config.json]

Examples:
  oilresolve site.jsonc
  oilresolve --locale deDE_01 --country US site.jsonc
  oilresolve --geoip GeoLite2-Country.mmdb --ip 81.2.69.142 site.jsonc
  cat site.json | oilresolve --key hub_path

Flags:
%s`, flagSet.FlagUsages())
}
