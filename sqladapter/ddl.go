package sqladapter

import (
	"context"
	"fmt"

	"github.com/better-auth/adaptercore/migrate"
	"github.com/better-auth/adaptercore/schema"
)

// BindSchema attaches a registry to the driver so CreateSchema can plan
// and apply outstanding DDL directly against the same connection used
// for reads and writes, satisfying adapter.SchemaCreator (spec.md §4.4
// createSchema).
func (d *Driver) BindSchema(reg *schema.Registry, rateLimitStorage string) *Driver {
	clone := *d
	clone.reg = reg
	clone.rateLimitStorage = rateLimitStorage
	return &clone
}

// CreateSchema plans outstanding DDL against the live database and
// executes every statement in order. Returns an error if the driver
// was not bound to a registry via BindSchema first.
func (d *Driver) CreateSchema(ctx context.Context) error {
	if d.reg == nil {
		return fmt.Errorf("sqladapter: CreateSchema called without BindSchema")
	}
	stmts, err := migrate.Plan(ctx, d.reg, d, migrate.Options{
		Dialect:          d.dialect,
		UseNumberID:      d.caps.UseNumberID,
		RateLimitStorage: d.rateLimitStorage,
	})
	if err != nil {
		return fmt.Errorf("sqladapter: planning schema: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := d.conn.ExecContext(ctx, stmt.SQL); err != nil {
			return fmt.Errorf("sqladapter: applying %q: %w", stmt.Model, err)
		}
	}
	return nil
}
