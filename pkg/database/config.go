package database

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	"github.com/go-sql-driver/mysql"

	"github.com/Alijeyrad/biomatrix/config"
)

// Params identifies one BioMatrix store. The first five fields are the opaque
// connection strings handed over by the configuration loader; the rest tune the
// handle. Params is comparable, which is what makes Connect idempotent.
type Params struct {
	Driver   string
	User     string
	Password string
	Host     string
	Database string

	Port           int
	SSLMode        string
	ConnectTimeout time.Duration

	// Connection pooling
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
}

// FromCentralConfig converts central config.DatabaseConfig to package Params
func FromCentralConfig(c config.DatabaseConfig) Params {
	return Params{
		Driver:             c.Driver,
		User:               c.User,
		Password:           c.Password,
		Host:               c.Host,
		Database:           c.DBName,
		Port:               c.Port,
		SSLMode:            c.SSLMode,
		ConnectTimeout:     time.Duration(c.ConnectTimeoutSeconds) * time.Second,
		MaxOpenConns:       c.Pool.MaxOpenConns,
		MaxIdleConns:       c.Pool.MaxIdleConns,
		ConnMaxLifetimeMin: c.Pool.ConnMaxLifetimeMin,
	}
}

// ConnMaxLifetime returns the connection max lifetime as a duration
func (p Params) ConnMaxLifetime() time.Duration {
	if p.ConnMaxLifetimeMin <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(p.ConnMaxLifetimeMin) * time.Minute
}

func (p Params) timeout() time.Duration {
	if p.ConnectTimeout <= 0 {
		return 5 * time.Second
	}
	return p.ConnectTimeout
}

// String renders the params without the password, for logs.
func (p Params) String() string {
	switch p.kind() {
	case kindSQLite:
		return fmt.Sprintf("%s://%s", p.Driver, p.Database)
	default:
		return fmt.Sprintf("%s://%s@%s/%s", p.Driver, p.User, p.address(), p.Database)
	}
}

type driverKind int

const (
	kindUnknown driverKind = iota
	kindPostgres
	kindPgx
	kindMySQL
	kindSQLite
)

func (p Params) kind() driverKind {
	switch strings.ToLower(p.Driver) {
	case "postgres", "postgresql":
		return kindPostgres
	case "pgx":
		return kindPgx
	case "mysql":
		return kindMySQL
	case "sqlite", "sqlite3":
		return kindSQLite
	default:
		return kindUnknown
	}
}

// sqlDriver is the database/sql driver name registered by the imported driver package.
func (p Params) sqlDriver() string {
	switch p.kind() {
	case kindPostgres:
		return "postgres"
	case kindPgx:
		return "pgx"
	case kindMySQL:
		return "mysql"
	case kindSQLite:
		return "sqlite"
	default:
		return ""
	}
}

// Dialect returns the ent dialect used to build statements for this store.
func (p Params) Dialect() string {
	switch p.kind() {
	case kindPostgres, kindPgx:
		return dialect.Postgres
	case kindMySQL:
		return dialect.MySQL
	case kindSQLite:
		return dialect.SQLite
	default:
		return ""
	}
}

func (p Params) address() string {
	if p.Port <= 0 {
		return p.Host
	}
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// DSN returns the driver specific connection string
func (p Params) DSN() string {
	switch p.kind() {
	case kindPostgres, kindPgx:
		return buildPostgresDSN(p)
	case kindMySQL:
		return buildMySQLDSN(p)
	case kindSQLite:
		// query_only keeps the handle read-only; the store is never written through us.
		return p.Database + "?_pragma=query_only(1)"
	default:
		return ""
	}
}

// buildPostgresDSN creates a PostgreSQL keyword/value connection string,
// understood by both lib/pq and pgx.
func buildPostgresDSN(p Params) string {
	parts := []string{
		"host=" + quoteDSNValue(p.Host),
		"user=" + quoteDSNValue(p.User),
		"password=" + quoteDSNValue(p.Password),
		"dbname=" + quoteDSNValue(p.Database),
	}
	if p.Port > 0 {
		parts = append(parts, fmt.Sprintf("port=%d", p.Port))
	}
	sslmode := p.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	parts = append(parts, "sslmode="+sslmode)
	parts = append(parts, fmt.Sprintf("connect_timeout=%d", int(p.timeout().Seconds())))
	return strings.Join(parts, " ")
}

func buildMySQLDSN(p Params) string {
	c := mysql.NewConfig()
	c.User = p.User
	c.Passwd = p.Password
	c.Net = "tcp"
	c.Addr = p.address()
	c.DBName = p.Database
	c.Timeout = p.timeout()
	c.ParseTime = true
	return c.FormatDSN()
}

func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
