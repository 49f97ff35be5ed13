package authstore

import (
	"context"
	"time"

	core "github.com/better-auth/adaptercore"
	"github.com/better-auth/adaptercore/where"
)

// FindVerificationValue returns the verification row for identifier.
// An expired row is opportunistically deleted before returning
// (spec.md §4.7); the delete goes through the factory so its
// lifecycle hooks still fire.
func (s *Store) FindVerificationValue(ctx context.Context, identifier string) (core.Record, bool, error) {
	row, ok, err := s.factory.FindOne(ctx, "verification", []where.Predicate{{Field: "identifier", Value: identifier}})
	if err != nil || !ok {
		return nil, false, err
	}

	exp, hasExp := row["expiresAt"].(time.Time)
	if hasExp && time.Now().After(exp) {
		if err := s.factory.Delete(ctx, "verification", []where.Predicate{{Field: "id", Value: row["id"]}}); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	return row, true, nil
}

// DeleteVerificationByIdentifier removes every verification row for
// identifier, returning the number removed.
func (s *Store) DeleteVerificationByIdentifier(ctx context.Context, identifier string) (int, error) {
	return s.factory.DeleteMany(ctx, "verification", []where.Predicate{{Field: "identifier", Value: identifier}})
}
