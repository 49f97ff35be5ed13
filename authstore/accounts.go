package authstore

import (
	"context"

	core "github.com/better-auth/adaptercore"
	"github.com/better-auth/adaptercore/where"
)

// CreateAccount inserts a new OAuth/credential account row.
func (s *Store) CreateAccount(ctx context.Context, data core.Record) (core.Record, error) {
	return s.factory.Create(ctx, "account", data)
}

// FindAccount returns the account matching (accountId, providerId).
func (s *Store) FindAccount(ctx context.Context, accountID, providerID string) (core.Record, bool, error) {
	return s.factory.FindOne(ctx, "account", []where.Predicate{
		{Field: "accountId", Value: accountID},
		{Field: "providerId", Value: providerID},
	})
}

// DeleteAccounts removes every account linked to userID, returning the
// number removed.
func (s *Store) DeleteAccounts(ctx context.Context, userID string) (int, error) {
	return s.factory.DeleteMany(ctx, "account", []where.Predicate{{Field: "userId", Value: userID}})
}
