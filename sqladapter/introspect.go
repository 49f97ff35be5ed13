package sqladapter

import (
	"context"
	"fmt"

	atlasschema "ariga.io/atlas/sql/schema"

	"github.com/better-auth/adaptercore/migrate"
)

// Tables implements migrate.Introspector by reading each dialect's
// catalog directly, rather than pulling in atlas's full driver-specific
// inspection machinery; the planner only needs table/column names and
// a raw type string per column (spec.md §4.6 step 2).
func (d *Driver) Tables(ctx context.Context) (map[string]*atlasschema.Table, error) {
	switch d.dialect {
	case migrate.Postgres:
		return d.tablesFromInformationSchema(ctx, "table_schema = current_schema()")
	case migrate.MySQL:
		return d.tablesFromInformationSchema(ctx, "table_schema = database()")
	case migrate.SQLite:
		return d.tablesSQLite(ctx)
	default:
		return nil, fmt.Errorf("sqladapter: introspection unsupported for dialect %q", d.dialect)
	}
}

// tablesFromInformationSchema covers Postgres and MySQL, whose
// information_schema.columns views share the columns this query needs.
func (d *Driver) tablesFromInformationSchema(ctx context.Context, schemaFilter string) (map[string]*atlasschema.Table, error) {
	query := fmt.Sprintf(
		"SELECT table_name, column_name, data_type FROM information_schema.columns WHERE %s ORDER BY table_name, ordinal_position",
		schemaFilter)
	rows, err := d.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]*atlasschema.Table)
	for rows.Next() {
		var table, column, dataType string
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			return nil, err
		}
		t, ok := out[table]
		if !ok {
			t = &atlasschema.Table{Name: table}
			out[table] = t
		}
		t.Columns = append(t.Columns, &atlasschema.Column{
			Name: column,
			Type: &atlasschema.ColumnType{Raw: dataType},
		})
	}
	return out, rows.Err()
}

// tablesSQLite has no information_schema; it walks sqlite_master for
// table names and PRAGMA table_info for each table's columns.
func (d *Driver) tablesSQLite(ctx context.Context) (map[string]*atlasschema.Table, error) {
	rows, err := d.conn.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, err
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	out := make(map[string]*atlasschema.Table, len(names))
	for _, name := range names {
		t := &atlasschema.Table{Name: name}
		colRows, err := d.conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", name))
		if err != nil {
			return nil, err
		}
		for colRows.Next() {
			var cid int
			var colName, colType string
			var notNull int
			var dflt any
			var pk int
			if err := colRows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
				colRows.Close()
				return nil, err
			}
			t.Columns = append(t.Columns, &atlasschema.Column{
				Name: colName,
				Type: &atlasschema.ColumnType{Raw: colType},
			})
		}
		if err := colRows.Err(); err != nil {
			colRows.Close()
			return nil, err
		}
		colRows.Close()
		out[name] = t
	}
	return out, nil
}
