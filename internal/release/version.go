// Package release reports which banner release is current.
//
// The build version is injected at link time:
//
//	go build -ldflags "-X oil-config/internal/release.Version=1.2.3"
//
// A Tracker can additionally follow a published release manifest so the default
// hub path points at the newest release without redeploying.
package release

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the release this binary was built from.
var Version = "0.0.0"

// Normalize returns v in canonical semver form without the "v" prefix and without
// build metadata ("v1.2" -> "1.2.0"). Strings that are not semver are returned trimmed.
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	canonical := semver.Canonical(withPrefix(v))
	if canonical == "" {
		return strings.TrimPrefix(v, "v")
	}
	return strings.TrimPrefix(canonical, "v")
}

// IsStable reports whether v is valid semver without a prerelease suffix.
func IsStable(v string) bool {
	p := withPrefix(strings.TrimSpace(v))
	return semver.IsValid(p) && semver.Prerelease(p) == ""
}

// Newest returns the highest stable version in versions, normalized, or "" if none is stable.
func Newest(versions []string) string {
	best := ""
	for _, v := range versions {
		if !IsStable(v) {
			continue
		}
		p := withPrefix(strings.TrimSpace(v))
		if best == "" || semver.Compare(p, best) > 0 {
			best = p
		}
	}
	if best == "" {
		return ""
	}
	return Normalize(best)
}

func withPrefix(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// Static is a fixed release version.
type Static string

// LatestReleaseVersion returns s.
func (s Static) LatestReleaseVersion() string { return string(s) }
