package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return dir
}

func TestReadConfig(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: mysql
  host: biomatrix.local
  user: reader
  password: secret
  dbname: biomatrix
export:
  output_dir: /tmp/out
`)

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Database.Driver != "mysql" {
		t.Errorf("Driver = %q, want mysql", cfg.Database.Driver)
	}
	if cfg.Database.Host != "biomatrix.local" {
		t.Errorf("Host = %q, want biomatrix.local", cfg.Database.Host)
	}
	if cfg.Database.ConnectTimeoutSeconds != 1 {
		t.Errorf("ConnectTimeoutSeconds = %d, want default 1", cfg.Database.ConnectTimeoutSeconds)
	}
	if cfg.Export.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q, want /tmp/out", cfg.Export.OutputDir)
	}
	if cfg.Export.Sink != "dir" {
		t.Errorf("Sink = %q, want default dir", cfg.Export.Sink)
	}
}

func TestReadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: postgres
  host: file-host
  dbname: biomatrix
`)
	t.Setenv("BIOMATRIX_DATABASE_HOST", "env-host")

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}
	if cfg.Database.Host != "env-host" {
		t.Errorf("Host = %q, want env-host", cfg.Database.Host)
	}
}

func TestReadConfigWithoutFile(t *testing.T) {
	t.Setenv("BIOMATRIX_DATABASE_DRIVER", "sqlite")
	t.Setenv("BIOMATRIX_DATABASE_DBNAME", "biomatrix.db")

	cfg, err := ReadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}
	if cfg.Database.DBName != "biomatrix.db" {
		t.Errorf("DBName = %q, want biomatrix.db", cfg.Database.DBName)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{Database: DatabaseConfig{Driver: "postgres", DBName: "biomatrix"}},
		},
		{
			name:    "unknown driver",
			cfg:     Config{Database: DatabaseConfig{Driver: "oracle", DBName: "biomatrix"}},
			wantErr: "database.driver",
		},
		{
			name:    "missing dbname",
			cfg:     Config{Database: DatabaseConfig{Driver: "sqlite"}},
			wantErr: "database.dbname",
		},
		{
			name: "s3 sink without bucket",
			cfg: Config{
				Database: DatabaseConfig{Driver: "sqlite", DBName: "x.db"},
				Export:   ExportConfig{Sink: "s3"},
			},
			wantErr: "s3.bucket",
		},
		{
			name: "unknown sink",
			cfg: Config{
				Database: DatabaseConfig{Driver: "sqlite", DBName: "x.db"},
				Export:   ExportConfig{Sink: "ftp"},
			},
			wantErr: "export.sink",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
