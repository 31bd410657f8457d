package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"syscall"
	"testing"

	entsql "entgo.io/ent/dialect/sql"
)

// newSQLiteFile creates a sqlite database with a single table and returns its params.
func newSQLiteFile(t *testing.T, name string) Params {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE probe (id INTEGER PRIMARY KEY, label TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO probe (id, label) VALUES (1, ?)`, name); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return Params{Driver: "sqlite", Database: path}
}

func probeLabel(t *testing.T, s *Session) string {
	t.Helper()
	var rows entsql.Rows
	if err := s.Query(context.Background(), "SELECT label FROM probe WHERE id = 1", nil, &rows); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatalf("expected one row")
	}
	var label string
	if err := rows.Scan(&label); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	return label
}

func TestSessionWithoutConnection(t *testing.T) {
	c := NewConnector()

	_, err := c.Session()
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("Session() error = %v, want ErrConnection", err)
	}
	if got := len(c.Sessions()); got != 0 {
		t.Errorf("registry size = %d, want 0", got)
	}
	if c.Connected() {
		t.Error("Connected() = true on a fresh connector")
	}
}

func TestConnectFailure(t *testing.T) {
	c := NewConnector()
	err := c.Connect(context.Background(), Params{Driver: "sqlite", Database: filepath.Join(t.TempDir(), "missing.db")})
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("Connect() error = %v, want ErrConnection", err)
	}
	if c.Connected() {
		t.Error("Connected() = true after failed connect")
	}

	err = c.Connect(context.Background(), Params{Driver: "oracle", Database: "x"})
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("Connect() unsupported driver error = %v, want ErrConnection", err)
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	p := newSQLiteFile(t, "a.db")
	opens := 0
	c := NewConnector(WithOpener(func(ctx context.Context, p Params) (*entsql.Driver, error) {
		opens++
		return openDriver(ctx, p)
	}))
	defer c.Close()

	for i := 0; i < 3; i++ {
		if err := c.Connect(context.Background(), p); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
	}
	if opens != 1 {
		t.Errorf("opened %d stores, want 1", opens)
	}
}

func TestRebindKeepsIssuedSessions(t *testing.T) {
	a := newSQLiteFile(t, "a.db")
	b := newSQLiteFile(t, "b.db")
	ctx := context.Background()

	c := NewConnector()
	defer c.Close()

	if err := c.Connect(ctx, a); err != nil {
		t.Fatalf("Connect(a) error = %v", err)
	}
	first, err := c.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}

	if err := c.Connect(ctx, b); err != nil {
		t.Fatalf("Connect(b) error = %v", err)
	}
	second, err := c.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}

	if got := probeLabel(t, first); got != "a.db" {
		t.Errorf("first session reads %q, want a.db", got)
	}
	if got := probeLabel(t, second); got != "b.db" {
		t.Errorf("second session reads %q, want b.db", got)
	}
	if got := len(c.Sessions()); got != 2 {
		t.Errorf("registry size = %d, want 2", got)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := len(c.Sessions()); got != 1 {
		t.Errorf("registry size after close = %d, want 1", got)
	}

	var rows entsql.Rows
	err = first.Query(ctx, "SELECT 1", nil, &rows)
	if !errors.Is(err, ErrConnection) {
		t.Errorf("Query() on closed session error = %v, want ErrConnection", err)
	}
	if err := first.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

func TestConnectorClose(t *testing.T) {
	p := newSQLiteFile(t, "a.db")
	c := NewConnector()
	if err := c.Connect(context.Background(), p); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := c.Session(); err != nil {
			t.Fatalf("Session() error = %v", err)
		}
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := len(c.Sessions()); got != 0 {
		t.Errorf("registry size = %d, want 0", got)
	}
	if _, err := c.Session(); !errors.Is(err, ErrConnection) {
		t.Errorf("Session() after Close error = %v, want ErrConnection", err)
	}
}

func TestIsConnectionFailure(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"bad conn", driver.ErrBadConn, true},
		{"conn done", sql.ErrConnDone, true},
		{"deadline", context.DeadlineExceeded, true},
		{"dial refused", dial, true},
		{"wrapped dial", fmt.Errorf("query: %w", dial), true},
		{"refused errno", syscall.ECONNREFUSED, true},
		{"statement error", errors.New(`relation "tbl_pt_exam" does not exist`), false},
		{"no rows", sql.ErrNoRows, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionFailure(tt.err); got != tt.want {
				t.Errorf("isConnectionFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestQueryOnUnreachableStore(t *testing.T) {
	// Open a pool without pinging it, as if the store went away after Connect.
	c := NewConnector(WithOpener(func(ctx context.Context, p Params) (*entsql.Driver, error) {
		db, err := sql.Open(p.sqlDriver(), p.DSN())
		if err != nil {
			return nil, err
		}
		return entsql.OpenDB(p.Dialect(), db), nil
	}))
	defer c.Close()

	p := Params{Driver: "postgres", User: "u", Host: "127.0.0.1", Port: 1, Database: "biomatrix", SSLMode: "disable"}
	if err := c.Connect(context.Background(), p); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	s, err := c.Session()
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	defer s.Close()

	var rows entsql.Rows
	err = s.Query(context.Background(), "SELECT 1", nil, &rows)
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("Query() error = %v, want ErrConnection", err)
	}
}
