package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Opener opens a store handle for the given params. Connector uses openDriver
// unless a test swaps it out.
type Opener func(ctx context.Context, p Params) (*entsql.Driver, error)

func openSQLDB(ctx context.Context, p Params) (*sql.DB, error) {
	if p.kind() == kindUnknown {
		return nil, fmt.Errorf("unsupported driver %q", p.Driver)
	}
	if p.kind() == kindSQLite {
		// sqlite would silently create an empty file for a mistyped path.
		if _, err := os.Stat(p.Database); err != nil {
			return nil, fmt.Errorf("sqlite database %q: %w", p.Database, err)
		}
	}

	conn, err := sql.Open(p.sqlDriver(), p.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply connection pool settings
	if p.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(p.MaxOpenConns)
	}
	if p.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(p.MaxIdleConns)
	}
	conn.SetConnMaxLifetime(p.ConnMaxLifetime())

	pingCtx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

func openDriver(ctx context.Context, p Params) (*entsql.Driver, error) {
	db, err := openSQLDB(ctx, p)
	if err != nil {
		return nil, err
	}
	return entsql.OpenDB(p.Dialect(), db), nil
}
