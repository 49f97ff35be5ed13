// Package authstore implements the internal adapter (spec.md §4.7): a
// thin, typed domain layer over the adapter factory that knows the
// four base models (user, session, account, verification) and
// optionally layers secondary-storage caching over session reads.
//
// Secondary-storage failures are logged and swallowed here; the
// primary store, reached through the factory, is always authoritative
// (spec.md §7 policy).
package authstore

import (
	"log/slog"

	core "github.com/better-auth/adaptercore"
	"github.com/better-auth/adaptercore/adapter"
	"github.com/better-auth/adaptercore/secondary"
)

// Store is the typed auth-domain layer. Construct with New.
type Store struct {
	factory *adapter.Factory
	cache   secondary.Optional
	logger  *slog.Logger
}

// New returns a Store over factory. cache may be nil, disabling all
// session caching (spec.md §4.9).
func New(factory *adapter.Factory, cache secondary.Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{factory: factory, cache: secondary.Wrap(cache), logger: logger}
}

// warnCacheFailure logs a swallowed secondary-storage error without
// failing the caller's operation (spec.md §7).
func (s *Store) warnCacheFailure(op string, err error) {
	if err == nil {
		return
	}
	s.logger.Warn("authstore: secondary storage failure, primary store remains authoritative", "op", op, "error", err)
}

func recordID(r core.Record) string {
	if r == nil {
		return ""
	}
	id, _ := r["id"].(string)
	return id
}
