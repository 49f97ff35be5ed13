package sqladapter

import (
	"database/sql"
	"fmt"

	"github.com/better-auth/adaptercore/migrate"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// NewPostgres opens a Postgres-backed Driver over dsn using lib/pq.
func NewPostgres(dsn string) (*Driver, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqladapter: opening postgres: %w", err)
	}
	return newDriver(db, migrate.Postgres, styleDollar, "postgres"), nil
}

// NewMySQL opens a MySQL-backed Driver over dsn using
// go-sql-driver/mysql.
func NewMySQL(dsn string) (*Driver, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqladapter: opening mysql: %w", err)
	}
	return newDriver(db, migrate.MySQL, styleQuestion, "mysql"), nil
}

// NewSQLite opens a SQLite-backed Driver over dsn (typically a file
// path or ":memory:") using modernc.org/sqlite, a CGo-free driver.
func NewSQLite(dsn string) (*Driver, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqladapter: opening sqlite: %w", err)
	}
	return newDriver(db, migrate.SQLite, styleQuestion, "sqlite"), nil
}

// classifyError normalizes a database/sql error for the factory to
// wrap. The factory attaches operation context (spec.md §6.1); this
// adapter only needs to pass the underlying error through unchanged.
func classifyError(err error) error {
	return err
}
