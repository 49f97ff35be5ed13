package authstore

import (
	"context"

	core "github.com/better-auth/adaptercore"
	"github.com/better-auth/adaptercore/adapter"
	"github.com/better-auth/adaptercore/where"
)

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, data core.Record) (core.Record, error) {
	return s.factory.Create(ctx, "user", data)
}

// FindUserByEmail returns the user with the given email, if any.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (core.Record, bool, error) {
	return s.factory.FindOne(ctx, "user", []where.Predicate{{Field: "email", Value: email}})
}

// CreateOAuthUser atomically creates a user and its linked OAuth
// account (spec.md §4.7): if the driver supports transactions, both
// writes commit or fail together; otherwise they run sequentially and
// a failed account create leaves an orphaned user, per the factory's
// TransactionUnsupported policy.
func (s *Store) CreateOAuthUser(ctx context.Context, userData, accountData core.Record) (core.Record, core.Record, error) {
	var user, account core.Record
	err := s.factory.Transaction(ctx, func(tx *adapter.Factory) error {
		u, err := tx.Create(ctx, "user", userData)
		if err != nil {
			return err
		}
		linked := make(core.Record, len(accountData)+1)
		for k, v := range accountData {
			linked[k] = v
		}
		linked["userId"] = u["id"]
		a, err := tx.Create(ctx, "account", linked)
		if err != nil {
			return err
		}
		user, account = u, a
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return user, account, nil
}
