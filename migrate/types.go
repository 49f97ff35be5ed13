// Package migrate implements the migration planner (spec.md §4.6): it
// diffs the composed schema against live table introspection and emits
// an ordered list of dialect-tagged DDL statements. It never drops or
// renames a column and never emits a down-migration.
package migrate

import "fmt"

// Dialect selects the column-type mapping table used when emitting DDL
// (spec.md §4.6 step 4).
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
	MSSQL    Dialect = "mssql"
)

// columnKind is the closed set of logical column shapes the planner
// needs a concrete type for.
type columnKind uint8

const (
	colString columnKind = iota
	colNumber
	colBoolean
	colDate
	colJSON
	colID
	colForeignKeyID
)

// columnOpts refines a column-kind request with field-level hints
// (spec.md §3 sortable/bigint).
type columnOpts struct {
	sortable    bool
	bigint      bool
	useNumberID bool
}

// typeTable maps (dialect, kind) to the concrete column type emitted in
// CREATE TABLE / ADD COLUMN statements.
var typeTable = map[Dialect]map[columnKind]func(columnOpts) string{
	Postgres: {
		colString:       func(o columnOpts) string { return pick(o.sortable, "varchar(512)", "text") },
		colNumber:       func(o columnOpts) string { return pick(o.bigint, "bigint", "integer") },
		colBoolean:      func(columnOpts) string { return "boolean" },
		colDate:         func(columnOpts) string { return "timestamp" },
		colJSON:         func(columnOpts) string { return "jsonb" },
		colID:           func(o columnOpts) string { return pick(o.useNumberID, "serial", "varchar(36)") },
		colForeignKeyID: func(o columnOpts) string { return pick(o.useNumberID, "integer", "varchar(36)") },
	},
	MySQL: {
		colString:       func(o columnOpts) string { return pick(o.sortable, "varchar(512)", "text") },
		colNumber:       func(o columnOpts) string { return pick(o.bigint, "bigint", "int") },
		colBoolean:      func(columnOpts) string { return "boolean" },
		colDate:         func(columnOpts) string { return "datetime(3)" },
		colJSON:         func(columnOpts) string { return "json" },
		colID:           func(o columnOpts) string { return pick(o.useNumberID, "int auto_increment", "varchar(36)") },
		colForeignKeyID: func(o columnOpts) string { return pick(o.useNumberID, "int", "varchar(36)") },
	},
	SQLite: {
		colString:       func(columnOpts) string { return "text" },
		colNumber:       func(columnOpts) string { return "integer" },
		colBoolean:      func(columnOpts) string { return "boolean" },
		colDate:         func(columnOpts) string { return "date" },
		colJSON:         func(columnOpts) string { return "text" },
		colID:           func(o columnOpts) string { return pick(o.useNumberID, "integer", "text") },
		colForeignKeyID: func(columnOpts) string { return "text" },
	},
	MSSQL: {
		colString:       func(o columnOpts) string { return pick(o.sortable, "nvarchar(512)", "nvarchar(max)") },
		colNumber:       func(o columnOpts) string { return pick(o.bigint, "bigint", "int") },
		colBoolean:      func(columnOpts) string { return "bit" },
		colDate:         func(columnOpts) string { return "datetime2" },
		colJSON:         func(columnOpts) string { return "nvarchar(max)" },
		colID:           func(o columnOpts) string { return pick(o.useNumberID, "int identity(1,1)", "nvarchar(36)") },
		colForeignKeyID: func(o columnOpts) string { return pick(o.useNumberID, "int", "nvarchar(36)") },
	},
}

func pick(cond bool, whenTrue, whenFalse string) string {
	if cond {
		return whenTrue
	}
	return whenFalse
}

// columnType resolves the concrete DDL type for kind under dialect.
func columnType(d Dialect, kind columnKind, opts columnOpts) (string, error) {
	table, ok := typeTable[d]
	if !ok {
		return "", fmt.Errorf("migrate: unsupported dialect %q", d)
	}
	fn, ok := table[kind]
	if !ok {
		return "", fmt.Errorf("migrate: dialect %q has no mapping for column kind %d", d, kind)
	}
	return fn(opts), nil
}

// currentTimestampDefault returns the dialect-specific DDL clause for a
// date column carrying a callable default (spec.md §6.4).
func currentTimestampDefault(d Dialect) string {
	if d == MySQL {
		return "CURRENT_TIMESTAMP(3)"
	}
	return "CURRENT_TIMESTAMP"
}
