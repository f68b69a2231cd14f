package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Open connects to postgres (driver "pgx") or a local SQLite file (driver "sqlite").
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("openDB: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("openDB: open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// SQLite allows one writer; a single connection keeps transactions serialized.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("openDB: verify %s connection: %w", driver, err)
	}

	return db, nil
}

// Rebind rewrites '?' placeholders to $1..$n when driver is postgres.
func Rebind(driver, q string) string {
	if driver != DriverPostgres {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
