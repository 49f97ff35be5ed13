// Package secondary implements the secondary-storage contract (spec.md
// §4.9): an optional key-value store used for session caching with TTL.
// It is a plain interface, not a class hierarchy, per the teacher's
// design note; absence of a backend disables caching and every call site
// falls through to primary storage without scattering nil checks.
package secondary

import (
	"context"
	"time"
)

// Storage is the three-method contract a secondary cache backend must
// implement (spec.md §4.9).
type Storage interface {
	// Get retrieves a value from the cache. Returns ("", false, nil) if
	// the key does not exist.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores a value with an optional TTL. A zero TTL means the
	// value should not expire.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a value from the cache. Deleting a missing key is
	// not an error.
	Delete(ctx context.Context, key string) error
}

// Optional wraps a possibly-nil Storage so call sites never need a nil
// check: every method is a no-op (or reports "not found") when no
// backend is configured.
type Optional struct {
	backend Storage
}

// Wrap returns an Optional around backend, which may be nil.
func Wrap(backend Storage) Optional { return Optional{backend: backend} }

// Enabled reports whether a real backend is configured.
func (o Optional) Enabled() bool { return o.backend != nil }

func (o Optional) Get(ctx context.Context, key string) (string, bool, error) {
	if o.backend == nil {
		return "", false, nil
	}
	return o.backend.Get(ctx, key)
}

func (o Optional) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if o.backend == nil {
		return nil
	}
	return o.backend.Set(ctx, key, value, ttl)
}

func (o Optional) Delete(ctx context.Context, key string) error {
	if o.backend == nil {
		return nil
	}
	return o.backend.Delete(ctx, key)
}
