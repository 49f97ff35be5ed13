// Package sqladapter is a reference adapter.Driver backed by
// database/sql, supporting Postgres (lib/pq), MySQL
// (go-sql-driver/mysql), and SQLite (modernc.org/sqlite) — the three
// dialects the migration planner knows how to emit DDL for (spec.md
// §4.6).
package sqladapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/better-auth/adaptercore/adapter"
	"github.com/better-auth/adaptercore/migrate"
	"github.com/better-auth/adaptercore/schema"
	"github.com/better-auth/adaptercore/transform"
	"github.com/better-auth/adaptercore/where"
)

// paramStyle selects how the driver renders bind-parameter
// placeholders in generated SQL.
type paramStyle uint8

const (
	styleQuestion paramStyle = iota // MySQL, SQLite
	styleDollar                     // Postgres
)

// dbConn is the subset of *sql.DB / *sql.Tx that CRUD execution needs.
// A Driver running inside Transaction swaps this for the active *sql.Tx
// so every generated statement joins the caller's transaction.
type dbConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Driver is a database/sql-backed adapter.Driver.
type Driver struct {
	raw     *sql.DB // owns the connection pool; used for BeginTx and introspection
	conn    dbConn  // the executor CRUD methods use; raw, or a *sql.Tx mid-transaction
	dialect migrate.Dialect
	style   paramStyle
	caps    adapter.Capabilities

	// reg/rateLimitStorage are set by BindSchema; nil/"" until then.
	reg              *schema.Registry
	rateLimitStorage string
}

func newDriver(db *sql.DB, dialect migrate.Dialect, style paramStyle, adapterID string) *Driver {
	return &Driver{
		raw:     db,
		conn:    db,
		dialect: dialect,
		style:   style,
		caps: adapter.Capabilities{
			Capabilities: dialectCapabilities(dialect),
			AdapterID:    adapterID,
			AdapterName:  "SQL Adapter (" + string(dialect) + ")",
			Transaction:  true,
			Joins:        adapter.JoinFallback,
			DebugLogs:    true,
		},
	}
}

// dialectCapabilities reports what each reference driver's wire
// protocol natively carries. Arrays are never native across all three
// (Postgres has them, MySQL and SQLite don't), so the adapter falls
// back to JSON-encoding slices uniformly rather than special-casing
// Postgres arrays.
func dialectCapabilities(dialect migrate.Dialect) transform.Capabilities {
	switch dialect {
	case migrate.Postgres:
		return transform.Capabilities{
			SupportsBooleans: true, SupportsDates: true, SupportsJSON: true,
			SupportsJSONB: true, SupportsNumericIDs: true, SupportsNumbers: true,
		}
	case migrate.MySQL:
		return transform.Capabilities{
			SupportsBooleans: true, SupportsDates: true, SupportsJSON: true,
			SupportsNumericIDs: true, SupportsNumbers: true,
		}
	case migrate.SQLite:
		return transform.Capabilities{
			SupportsBooleans: true, SupportsDates: true,
			SupportsNumericIDs: true, SupportsNumbers: true,
		}
	default:
		return transform.Capabilities{}
	}
}

// WithNumericIDs returns a copy of the driver configured to treat id
// columns as auto-increment integers (spec.md §4.4 useNumberId).
func (d *Driver) WithNumericIDs() *Driver {
	clone := *d
	clone.caps.SupportsNumericIDs = true
	clone.caps.UseNumberID = true
	clone.caps.DisableIDGeneration = true
	return &clone
}

func (d *Driver) Capabilities() adapter.Capabilities { return d.caps }

func (d *Driver) placeholder(n int) string {
	if d.style == styleDollar {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// likeEscape is the escape character used in generated LIKE clauses, so
// a literal "%" or "_" inside a contains/starts_with/ends_with value
// matches itself rather than acting as a SQL wildcard.
const likeEscape = `\`

// escapeLikePattern backslash-escapes the SQL wildcard metacharacters
// "%" and "_", plus the escape character itself, in a literal pattern
// fragment before it is wrapped with wildcards (spec.md §4.3 "Pattern
// safety").
func escapeLikePattern(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			b.WriteString(likeEscape)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// buildWhere renders a compiled predicate list as a SQL boolean
// expression. Predicates are partitioned by Connector into an AND-group
// and an OR-group and combined as AND(and-group) AND OR(or-group), per
// spec.md §4.3's grouping semantics — not fold order, which would make
// the result depend on predicate position rather than connector.
func (d *Driver) buildWhere(clauses []where.Compiled, paramStart int) (string, []any) {
	if len(clauses) == 0 {
		return "", nil
	}

	var andClauses, orClauses []where.Compiled
	for _, c := range clauses {
		if c.Connector == where.Or {
			orClauses = append(orClauses, c)
		} else {
			andClauses = append(andClauses, c)
		}
	}

	// Render the AND-group first and the OR-group second, in that
	// textual order, so args stays aligned with "?"-style placeholders
	// (bound by left-to-right appearance) as well as "$N"-style ones
	// (bound by the number embedded in the placeholder).
	n := paramStart
	var args []any
	render := func(c where.Compiled) string {
		field := c.Field
		if c.CaseInsensitive {
			field = fmt.Sprintf("LOWER(%s)", c.Field)
		}
		switch c.Operator {
		case where.In, where.NotIn:
			vals, _ := c.Value.([]any)
			placeholders := make([]string, len(vals))
			for i, v := range vals {
				placeholders[i] = d.placeholder(n)
				n++
				args = append(args, v)
			}
			op := "IN"
			if c.Operator == where.NotIn {
				op = "NOT IN"
			}
			return fmt.Sprintf("%s %s (%s)", field, op, strings.Join(placeholders, ", "))
		case where.Contains:
			ph := d.placeholder(n)
			n++
			args = append(args, fmt.Sprintf("%%%s%%", escapeLikePattern(fmt.Sprint(c.Value))))
			return fmt.Sprintf("%s LIKE %s ESCAPE '%s'", field, ph, likeEscape)
		case where.StartsWith:
			ph := d.placeholder(n)
			n++
			args = append(args, fmt.Sprintf("%s%%", escapeLikePattern(fmt.Sprint(c.Value))))
			return fmt.Sprintf("%s LIKE %s ESCAPE '%s'", field, ph, likeEscape)
		case where.EndsWith:
			ph := d.placeholder(n)
			n++
			args = append(args, fmt.Sprintf("%%%s", escapeLikePattern(fmt.Sprint(c.Value))))
			return fmt.Sprintf("%s LIKE %s ESCAPE '%s'", field, ph, likeEscape)
		default:
			ph := d.placeholder(n)
			n++
			args = append(args, c.Value)
			return fmt.Sprintf("%s %s %s", field, sqlOperator(c.Operator), ph)
		}
	}

	andParts := make([]string, len(andClauses))
	for i, c := range andClauses {
		andParts[i] = render(c)
	}
	orParts := make([]string, len(orClauses))
	for i, c := range orClauses {
		orParts[i] = render(c)
	}

	andExpr := strings.Join(andParts, " AND ")
	orExpr := strings.Join(orParts, " OR ")

	switch {
	case andExpr != "" && orExpr != "":
		return fmt.Sprintf("(%s) AND (%s)", andExpr, orExpr), args
	case andExpr != "":
		return andExpr, args
	default:
		return orExpr, args
	}
}

func sqlOperator(op where.Operator) string {
	switch op {
	case where.EQ:
		return "="
	case where.NE:
		return "<>"
	case where.LT:
		return "<"
	case where.LTE:
		return "<="
	case where.GT:
		return ">"
	case where.GTE:
		return ">="
	default:
		return "="
	}
}

func (d *Driver) Create(ctx context.Context, req adapter.CreateRequest) (adapter.Row, error) {
	cols := make([]string, 0, len(req.Data))
	placeholders := make([]string, 0, len(req.Data))
	args := make([]any, 0, len(req.Data))
	n := 1
	for col, v := range req.Data {
		cols = append(cols, col)
		placeholders = append(placeholders, d.placeholder(n))
		args = append(args, v)
		n++
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", req.Model, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := d.conn.ExecContext(ctx, query, args...); err != nil {
		return nil, classifyError(err)
	}
	return req.Data, nil
}

func (d *Driver) Update(ctx context.Context, req adapter.UpdateRequest) (adapter.Row, bool, error) {
	row, found, err := d.FindOne(ctx, adapter.FindOneRequest{Model: req.Model, Where: req.Where})
	if err != nil || !found {
		return nil, found, err
	}

	setCols := make([]string, 0, len(req.Update))
	args := make([]any, 0, len(req.Update)+4)
	n := 1
	for col, v := range req.Update {
		setCols = append(setCols, fmt.Sprintf("%s = %s", col, d.placeholder(n)))
		args = append(args, v)
		n++
	}
	whereExpr, whereArgs := d.buildWhere(req.Where, n)
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", req.Model, strings.Join(setCols, ", "), whereExpr)
	if _, err := d.conn.ExecContext(ctx, query, args...); err != nil {
		return nil, false, classifyError(err)
	}
	for k, v := range req.Update {
		row[k] = v
	}
	return row, true, nil
}

func (d *Driver) UpdateMany(ctx context.Context, req adapter.UpdateRequest) (int, error) {
	setCols := make([]string, 0, len(req.Update))
	args := make([]any, 0, len(req.Update)+4)
	n := 1
	for col, v := range req.Update {
		setCols = append(setCols, fmt.Sprintf("%s = %s", col, d.placeholder(n)))
		args = append(args, v)
		n++
	}
	whereExpr, whereArgs := d.buildWhere(req.Where, n)
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s", req.Model, strings.Join(setCols, ", "))
	if whereExpr != "" {
		query += " WHERE " + whereExpr
	}
	res, err := d.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classifyError(err)
	}
	n64, err := res.RowsAffected()
	if err != nil {
		return 0, classifyError(err)
	}
	return int(n64), nil
}

func (d *Driver) FindOne(ctx context.Context, req adapter.FindOneRequest) (adapter.Row, bool, error) {
	whereExpr, args := d.buildWhere(req.Where, 1)
	query := fmt.Sprintf("SELECT * FROM %s", req.Model)
	if whereExpr != "" {
		query += " WHERE " + whereExpr
	}
	query += " LIMIT 1"

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, classifyError(err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, false, classifyError(err)
	}
	if len(out) == 0 {
		return nil, false, nil
	}
	return out[0], true, nil
}

func (d *Driver) FindMany(ctx context.Context, req adapter.FindManyRequest) ([]adapter.Row, error) {
	whereExpr, args := d.buildWhere(req.Where, 1)
	query := fmt.Sprintf("SELECT * FROM %s", req.Model)
	if whereExpr != "" {
		query += " WHERE " + whereExpr
	}
	if len(req.SortBy) > 0 {
		parts := make([]string, len(req.SortBy))
		for i, s := range req.SortBy {
			dir := "ASC"
			if s.Desc {
				dir = "DESC"
			}
			parts[i] = fmt.Sprintf("%s %s", s.Field, dir)
		}
		query += " ORDER BY " + strings.Join(parts, ", ")
	}
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", req.Limit)
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", req.Offset)
	}

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifyError(err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func (d *Driver) Delete(ctx context.Context, req adapter.DeleteRequest) error {
	whereExpr, args := d.buildWhere(req.Where, 1)

	var query string
	switch d.dialect {
	case migrate.Postgres, migrate.SQLite:
		// Neither dialect supports DELETE ... LIMIT; emulate with a
		// subquery over the implicit row identifier.
		rowID := "ctid"
		if d.dialect == migrate.SQLite {
			rowID = "rowid"
		}
		query = fmt.Sprintf("DELETE FROM %s WHERE %s IN (SELECT %s FROM %s", req.Model, rowID, rowID, req.Model)
		if whereExpr != "" {
			query += " WHERE " + whereExpr
		}
		query += " LIMIT 1)"
	default:
		query = fmt.Sprintf("DELETE FROM %s", req.Model)
		if whereExpr != "" {
			query += " WHERE " + whereExpr
		}
		query += " LIMIT 1"
	}

	_, err := d.conn.ExecContext(ctx, query, args...)
	return classifyError(err)
}

func (d *Driver) DeleteMany(ctx context.Context, req adapter.DeleteRequest) (int, error) {
	whereExpr, args := d.buildWhere(req.Where, 1)
	query := fmt.Sprintf("DELETE FROM %s", req.Model)
	if whereExpr != "" {
		query += " WHERE " + whereExpr
	}
	res, err := d.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classifyError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classifyError(err)
	}
	return int(n), nil
}

func (d *Driver) Count(ctx context.Context, req adapter.CountRequest) (int, error) {
	whereExpr, args := d.buildWhere(req.Where, 1)
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", req.Model)
	if whereExpr != "" {
		query += " WHERE " + whereExpr
	}
	var n int
	if err := d.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, classifyError(err)
	}
	return n, nil
}

// Transaction runs fn against a Driver whose CRUD methods execute over
// a *sql.Tx instead of the shared pool (spec.md §6.1).
func (d *Driver) Transaction(ctx context.Context, fn func(adapter.Driver) error) error {
	tx, err := d.raw.BeginTx(ctx, nil)
	if err != nil {
		return classifyError(err)
	}
	sub := *d
	sub.conn = tx
	if err := fn(&sub); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func scanRows(rows *sql.Rows) ([]adapter.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []adapter.Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(adapter.Row, len(cols))
		for i, c := range cols {
			row[c] = normalizeScanned(vals[i])
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// normalizeScanned converts driver-specific scan results (commonly
// []byte for TEXT/VARCHAR columns) into the plain Go types package
// transform expects.
func normalizeScanned(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
