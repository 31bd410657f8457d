package database

import (
	"strings"
	"testing"
	"time"

	"entgo.io/ent/dialect"

	"github.com/Alijeyrad/biomatrix/config"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name     string
		params   Params
		contains []string
		dialect  string
	}{
		{
			name:     "postgres",
			params:   Params{Driver: "postgresql", User: "reader", Password: "pw", Host: "db", Database: "biomatrix", Port: 5432, ConnectTimeout: time.Second},
			contains: []string{"host=db", "user=reader", "password=pw", "dbname=biomatrix", "port=5432", "sslmode=disable", "connect_timeout=1"},
			dialect:  dialect.Postgres,
		},
		{
			name:     "pgx quotes values with spaces",
			params:   Params{Driver: "pgx", User: "reader", Password: "two words", Host: "db", Database: "biomatrix"},
			contains: []string{"password='two words'", "connect_timeout=5"},
			dialect:  dialect.Postgres,
		},
		{
			name:     "mysql",
			params:   Params{Driver: "mysql", User: "reader", Password: "pw", Host: "db", Database: "biomatrix", Port: 3306, ConnectTimeout: 2 * time.Second},
			contains: []string{"reader:pw@tcp(db:3306)/biomatrix", "parseTime=true", "timeout=2s"},
			dialect:  dialect.MySQL,
		},
		{
			name:     "sqlite",
			params:   Params{Driver: "sqlite", Database: "/data/biomatrix.db"},
			contains: []string{"/data/biomatrix.db?_pragma=query_only(1)"},
			dialect:  dialect.SQLite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.params.DSN()
			for _, want := range tt.contains {
				if !strings.Contains(dsn, want) {
					t.Errorf("DSN() = %q, missing %q", dsn, want)
				}
			}
			if got := tt.params.Dialect(); got != tt.dialect {
				t.Errorf("Dialect() = %q, want %q", got, tt.dialect)
			}
		})
	}
}

func TestParamsStringHidesPassword(t *testing.T) {
	p := Params{Driver: "postgres", User: "reader", Password: "hunter2", Host: "db", Port: 5432, Database: "biomatrix"}
	if s := p.String(); strings.Contains(s, "hunter2") {
		t.Errorf("String() leaks password: %q", s)
	}
}

func TestFromCentralConfig(t *testing.T) {
	p := FromCentralConfig(config.DatabaseConfig{
		Driver:                "mysql",
		Host:                  "db",
		User:                  "reader",
		Password:              "pw",
		DBName:                "biomatrix",
		ConnectTimeoutSeconds: 3,
		Pool:                  config.DatabasePoolConfig{MaxOpenConns: 7},
	})
	if p.Database != "biomatrix" || p.ConnectTimeout != 3*time.Second || p.MaxOpenConns != 7 {
		t.Errorf("FromCentralConfig() = %+v", p)
	}
}
