// Package banner supplies the page configuration record that every session's
// resolver starts from.
package banner

import (
	"context"
	"sync/atomic"

	"oil-config/internal/model"
	"oil-config/internal/oilconfig"
)

// Source abstracts where the base banner record comes from.
//
// Banner returns a record the caller owns: implementations hand out a copy, so
// per-session overrides (locale hints, SetLocale) never leak between sessions.
type Source interface {
	Banner(ctx context.Context) (oilconfig.RawConfig, error)
}

// Store is a Source holding one record that can be swapped at runtime,
// e.g. when the service reloads its configuration.
type Store struct {
	current atomic.Pointer[oilconfig.RawConfig]
}

// NewStore returns a Store serving raw. A nil raw leaves the store empty
// until Set is called.
func NewStore(raw oilconfig.RawConfig) *Store {
	s := &Store{}
	if raw != nil {
		s.Set(raw)
	}
	return s
}

// Set replaces the served record. The store keeps its own copy.
func (s *Store) Set(raw oilconfig.RawConfig) {
	c := raw.Clone()
	s.current.Store(&c)
}

// Banner returns a copy of the current record, or an unavailable error
// when nothing has been loaded.
func (s *Store) Banner(ctx context.Context) (oilconfig.RawConfig, error) {
	p := s.current.Load()
	if p == nil {
		return nil, model.NewUnavailableError("banner configuration")
	}
	return p.Clone(), nil
}
