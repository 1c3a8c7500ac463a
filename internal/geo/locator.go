// Package geo maps visitor IP addresses to countries and decides whether
// EU consent rules apply there.
//
// A missing database is not an error: the Locator degrades to "unknown"
// for every address and callers fall back to the configured applicability.
package geo

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// Locator resolves IP addresses against a MaxMind-format country database.
// A nil *Locator is valid and never finds anything.
type Locator struct {
	db   *geoip2.Reader
	path string
}

// Open loads the database at path. It returns nil, nil when path is empty or
// the file does not exist, and an error when the file exists but cannot be read.
func Open(path string) (*Locator, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geoip database %s: %w", path, err)
	}
	return &Locator{db: db, path: path}, nil
}

// Close releases the database.
func (l *Locator) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Path returns the database file in use, "" when disabled.
func (l *Locator) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Lookup returns the ISO 3166-1 alpha-2 country code for ip. "host:port" input
// is accepted. Private, loopback and unparseable addresses are not found.
func (l *Locator) Lookup(ip string) (string, bool) {
	if l == nil || l.db == nil {
		return "", false
	}

	addr := ParseIP(ip)
	if addr == nil || isPrivate(addr) {
		return "", false
	}

	record, err := l.db.Country(addr)
	if err != nil || record.Country.IsoCode == "" {
		return "", false
	}
	return strings.ToUpper(record.Country.IsoCode), true
}

// ParseIP accepts a bare address or "host:port" and returns nil when neither parses.
func ParseIP(s string) net.IP {
	s = strings.TrimSpace(s)
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	return net.ParseIP(strings.Trim(s, "[]"))
}

func isPrivate(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}
