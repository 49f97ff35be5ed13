package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	atlasschema "ariga.io/atlas/sql/schema"

	"github.com/better-auth/adaptercore/schema"
	"github.com/better-auth/adaptercore/schema/field"
)

// Introspector reports the live tables a database holds, keyed by
// physical table name. A table absent from the map is treated as not
// yet created (spec.md §4.6 step 2).
type Introspector interface {
	Tables(ctx context.Context) (map[string]*atlasschema.Table, error)
}

// Options parameterizes a planning run.
type Options struct {
	Dialect Dialect
	// UseNumberID selects the numeric id-column mapping; must match the
	// factory's IDPolicy for the statements to be self-consistent.
	UseNumberID bool
	// RateLimitStorage, when "database", adds the ratelimit table to the
	// plan even though it has no corresponding schema model (spec.md §4.6
	// step 3, SPEC_FULL.md supplemented feature).
	RateLimitStorage string
	Logger           *slog.Logger
}

// Statement is one emitted DDL operation, tagged with the dialect it
// was compiled for.
type Statement struct {
	Dialect Dialect
	Model   string
	SQL     string
}

// Plan diffs s against the tables introspector reports live and returns
// the ordered list of CREATE TABLE / ADD COLUMN statements needed to
// bring the database in line (spec.md §4.6). It never emits a DROP, a
// RENAME, or a down-migration.
func Plan(ctx context.Context, reg *schema.Registry, intro Introspector, opts Options) ([]Statement, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	live, err := intro.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: introspecting: %w", err)
	}

	models := orderedModels(reg.Schema())

	var stmts []Statement
	for _, name := range models {
		m, _ := reg.Model(name)
		if m.DisableMigrations {
			continue
		}
		physical, err := reg.GetModelName(name)
		if err != nil {
			return nil, err
		}

		table, exists := live[physical]
		if !exists {
			stmt, err := createTable(reg, physical, m, opts)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, Statement{Dialect: opts.Dialect, Model: name, SQL: stmt})
			continue
		}

		liveCols := columnSet(table)
		for _, fname := range orderedFieldNames(m) {
			fd := m.Fields[fname]
			physicalCol := fd.FieldName
			if physicalCol == "" {
				physicalCol = fname
			}
			if _, ok := liveCols[physicalCol]; ok {
				expected, err := ddlTypeFor(fd, opts)
				if err != nil {
					return nil, err
				}
				if actual := liveCols[physicalCol]; actual != "" && !typesCompatible(actual, expected) {
					logger.Warn("migrate: column type mismatch, not auto-altering",
						"table", physical, "column", physicalCol, "live", actual, "expected", expected)
				}
				continue
			}
			colDDL, err := columnDDL(physicalCol, fd, opts)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, Statement{
				Dialect: opts.Dialect,
				Model:   name,
				SQL:     fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", physical, colDDL),
			})
		}
	}

	if opts.RateLimitStorage == "database" {
		if _, exists := live["ratelimit"]; !exists {
			stmts = append(stmts, Statement{Dialect: opts.Dialect, Model: "ratelimit", SQL: rateLimitTableDDL(opts)})
		}
	}

	return stmts, nil
}

// orderedModels returns logical model names sorted by their declared
// Order, so that referenced models come before the models whose
// foreign keys point at them, falling back to name order for ties.
func orderedModels(s schema.Schema) []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, oj := s[names[i]].Order, s[names[j]].Order
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
	return names
}

func orderedFieldNames(m schema.Model) []string {
	names := make([]string, 0, len(m.Fields))
	for n := range m.Fields {
		if n == "id" {
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)
	return append([]string{"id"}, names...)
}

func columnSet(t *atlasschema.Table) map[string]string {
	out := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		typ := ""
		if c.Type != nil {
			typ = c.Type.Raw
		}
		out[c.Name] = typ
	}
	return out
}

// typesCompatible is a loose case-insensitive prefix match; the
// planner only warns on mismatch, it never auto-alters, so precision
// is not load-bearing (spec.md §4.6 step 2).
func typesCompatible(live, expected string) bool {
	if live == "" || expected == "" {
		return true
	}
	n := len(live)
	if len(expected) < n {
		n = len(expected)
	}
	return n > 0 && equalFold(live[:n], expected[:n])
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// createTable emits a CREATE TABLE statement for m. reg resolves
// foreign-key references (declared against logical model/field names,
// schema/field.Reference) to their physical (table, column) pair, so a
// referenced model's custom modelName/fieldName or usePlural is
// reflected in the emitted DDL (spec.md §4.6 item 5).
func createTable(reg *schema.Registry, physical string, m schema.Model, opts Options) (string, error) {
	var cols []string
	var fks []string
	for _, fname := range orderedFieldNames(m) {
		fd := m.Fields[fname]
		physicalCol := fd.FieldName
		if physicalCol == "" {
			physicalCol = fname
		}
		colDDL, err := columnDDL(physicalCol, fd, opts)
		if err != nil {
			return "", err
		}
		cols = append(cols, colDDL)
		if ref := fd.ReferenceTo(); ref != nil {
			onDelete := ref.OnDelete
			if onDelete == "" {
				onDelete = "cascade"
			}
			refTable, err := reg.GetModelName(ref.Model)
			if err != nil {
				return "", fmt.Errorf("migrate: resolving foreign key target model %q: %w", ref.Model, err)
			}
			refField, err := reg.GetFieldName(ref.Model, ref.Field)
			if err != nil {
				return "", fmt.Errorf("migrate: resolving foreign key target field %q.%q: %w", ref.Model, ref.Field, err)
			}
			fks = append(fks, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE %s",
				physicalCol, refTable, refField, onDelete))
		}
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (\n  %s", physical, cols[0])
	for _, c := range cols[1:] {
		stmt += ",\n  " + c
	}
	for _, fk := range fks {
		stmt += ",\n  " + fk
	}
	stmt += "\n)"
	return stmt, nil
}

func columnDDL(physicalCol string, fd field.Descriptor, opts Options) (string, error) {
	typ, err := ddlTypeFor(fd, opts)
	if err != nil {
		return "", err
	}
	ddl := fmt.Sprintf("%s %s", physicalCol, typ)
	if physicalCol == "id" {
		ddl += " PRIMARY KEY"
	}
	if fd.Required() && physicalCol != "id" {
		ddl += " NOT NULL"
	}
	if fd.Unique() {
		ddl += " UNIQUE"
	}
	if _, ok := fd.DefaultValue(); ok && fd.Type == field.TypeDate {
		ddl += " DEFAULT " + currentTimestampDefault(opts.Dialect)
	}
	return ddl, nil
}

func ddlTypeFor(fd field.Descriptor, opts Options) (string, error) {
	if fd.FieldName == "id" {
		return columnType(opts.Dialect, colID, columnOpts{useNumberID: opts.UseNumberID})
	}
	if fd.ReferenceTo() != nil {
		return columnType(opts.Dialect, colForeignKeyID, columnOpts{useNumberID: opts.UseNumberID})
	}
	kindOpts := columnOpts{sortable: fd.Sortable(), bigint: fd.BigInt()}
	switch fd.Type {
	case field.TypeString:
		return columnType(opts.Dialect, colString, kindOpts)
	case field.TypeNumber:
		return columnType(opts.Dialect, colNumber, kindOpts)
	case field.TypeBoolean:
		return columnType(opts.Dialect, colBoolean, kindOpts)
	case field.TypeDate:
		return columnType(opts.Dialect, colDate, kindOpts)
	case field.TypeJSON, field.TypeStringSlice, field.TypeNumberSlice:
		return columnType(opts.Dialect, colJSON, kindOpts)
	default:
		return "", fmt.Errorf("migrate: unhandled field type %v", fd.Type)
	}
}

// rateLimitTableDDL emits the conditional ratelimit table (spec.md
// §4.6 step 3): a bare hit-counter table with no corresponding schema
// model, since rate-limit state is framework-internal, not
// user-composable.
func rateLimitTableDDL(opts Options) string {
	idType, _ := columnType(opts.Dialect, colID, columnOpts{useNumberID: opts.UseNumberID})
	numberType, _ := columnType(opts.Dialect, colNumber, columnOpts{bigint: true})
	stringType, _ := columnType(opts.Dialect, colString, columnOpts{})
	return fmt.Sprintf(
		"CREATE TABLE ratelimit (\n  id %s PRIMARY KEY,\n  key %s NOT NULL UNIQUE,\n  count %s NOT NULL,\n  last_request %s NOT NULL\n)",
		idType, stringType, numberType, numberType)
}
