// Package adapter implements the adapter factory (spec.md §4.4): the
// coordinator that wraps a driver-provided adapter, enforces the ID
// policy, and drives schema resolution, transform, where-compilation,
// join fallback, and lifecycle hooks around every call.
package adapter

import (
	"context"

	"github.com/better-auth/adaptercore/transform"
	"github.com/better-auth/adaptercore/where"
)

// Capabilities is the capability record a driver publishes at
// construction (spec.md §6.1). It embeds transform.Capabilities (the
// subset that drives type coercion) plus the remaining contract fields.
type Capabilities struct {
	transform.Capabilities

	AdapterID   string
	AdapterName string

	// UsePlural mirrors the registry's pluralization setting back to the
	// driver so it can independently render physical names the same way
	// (used by drivers that do their own name derivation, e.g. for
	// introspection during migration).
	UsePlural bool

	// DisableIDGeneration tells the factory the driver will always
	// supply its own id (e.g. document stores with an ObjectID), so the
	// factory's ID policy is skipped even if not explicitly useNumberId.
	DisableIDGeneration bool

	// Transaction reports whether Driver also implements Transactional.
	Transaction bool

	// Joins declares native vs fallback join handling (spec.md §4.5).
	// Factory does not read it: every join is resolved through package
	// join's secondary queries, whatever the driver declares.
	Joins JoinMode

	// DebugLogs enables the four-phase trace for this driver instance.
	DebugLogs bool

	// MapKeysInput/MapKeysOutput declare physical field-key remaps
	// beyond the schema's fieldName overrides (e.g. a document store
	// that always uses "_id" regardless of schema configuration).
	// Neither Factory nor package transform applies them; physical keys
	// come from the schema's fieldName settings alone.
	MapKeysInput  map[string]string
	MapKeysOutput map[string]string
}

// JoinMode selects how the join resolver behaves for a driver.
type JoinMode uint8

const (
	// JoinFallback issues secondary queries from the core (spec.md
	// §4.5 fallback mode). This is the default for drivers that do not
	// declare native join support.
	JoinFallback JoinMode = iota
	// JoinNative declares native join support. Factory still resolves
	// joins through package join; no driver request carries a join
	// descriptor.
	JoinNative
)

// CreateRequest is the physical-keyed payload and options for Driver.Create.
type CreateRequest struct {
	Model string
	Data  Row
}

// UpdateRequest identifies rows via a compiled where clause and supplies
// the physical-keyed fields to change.
type UpdateRequest struct {
	Model  string
	Where  []where.Compiled
	Update Row
}

// FindOneRequest selects a single row.
type FindOneRequest struct {
	Model string
	Where []where.Compiled
}

// FindManyRequest selects a set of rows.
type FindManyRequest struct {
	Model  string
	Where  []where.Compiled
	Limit  int
	Offset int
	SortBy []SortField
}

// SortField orders results by a physical field name.
type SortField struct {
	Field string
	Desc  bool
}

// DeleteRequest identifies rows to remove via a compiled where clause.
type DeleteRequest struct {
	Model string
	Where []where.Compiled
}

// CountRequest counts rows matching a compiled where clause.
type CountRequest struct {
	Model string
	Where []where.Compiled
}

// Row is a physical-keyed record: the shape a driver actually reads and
// writes, after C2/C3 have resolved names and coerced values.
type Row = map[string]any

// Driver is the contract a storage backend implements (spec.md §6.1).
// Every method receives and returns physical-keyed data; the factory
// (Factory) is solely responsible for translating to/from the logical
// shape via package transform and package where.
type Driver interface {
	Capabilities() Capabilities

	Create(ctx context.Context, req CreateRequest) (Row, error)
	Update(ctx context.Context, req UpdateRequest) (Row, bool, error)
	UpdateMany(ctx context.Context, req UpdateRequest) (int, error)
	FindOne(ctx context.Context, req FindOneRequest) (Row, bool, error)
	FindMany(ctx context.Context, req FindManyRequest) ([]Row, error)
	Delete(ctx context.Context, req DeleteRequest) error
	DeleteMany(ctx context.Context, req DeleteRequest) (int, error)
	Count(ctx context.Context, req CountRequest) (int, error)
}

// Transactional is implemented by drivers that can run a function inside
// a native transaction. A driver that does not implement this interface
// runs transaction() bodies against itself sequentially, with
// core.ErrTransactionUnsupported reported as an informational warning.
type Transactional interface {
	Transaction(ctx context.Context, fn func(Driver) error) error
}

// SchemaCreator is implemented by drivers that can emit their own DDL
// directly (spec.md §4.4, createSchema). Optional; migration planning
// (package migrate) does not require it.
type SchemaCreator interface {
	CreateSchema(ctx context.Context) error
}
