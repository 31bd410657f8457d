package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/fx"

	"github.com/Alijeyrad/biomatrix/config"
	"github.com/Alijeyrad/biomatrix/internal/pull"
	"github.com/Alijeyrad/biomatrix/internal/testdb"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.DBName = testdb.Path(t)
	cfg.Export.OutputDir = t.TempDir()
	cfg.Logging.Level = "error"
	return cfg
}

func TestModulesValidate(t *testing.T) {
	if err := fx.ValidateApp(fx.Supply(testConfig(t)), InfraModule, DomainModule); err != nil {
		t.Fatalf("ValidateApp() error = %v", err)
	}
}

func TestExecRunsAgainstConfiguredStore(t *testing.T) {
	err := Exec(context.Background(), testConfig(t), func(ctx context.Context, d Deps) error {
		if !d.Conn.Connected() {
			t.Fatal("connector not connected after start")
		}
		if !d.Interpreter.Model().Bound() {
			t.Error("model not bound after start")
		}
		recs, err := d.Interpreter.Process(ctx, "Patient", nil)
		if err != nil {
			return err
		}
		if len(recs) != testdb.Patients {
			t.Errorf("patients = %d, want %d", len(recs), testdb.Patients)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
}

func TestSinkSelection(t *testing.T) {
	cfg := &config.Config{}
	cfg.Export.OutputDir = "reports"

	if _, ok := ProvideSink(cfg, nil).(pull.DirSink); !ok {
		t.Error("default sink is not a DirSink")
	}
	cfg.Export.Sink = "s3"
	if _, ok := ProvideSink(cfg, nil).(pull.DirSink); !ok {
		t.Error("s3 sink without a client should fall back to a DirSink")
	}
}

func TestExecSurvivesUnboundSchema(t *testing.T) {
	// An empty sqlite file connects but has none of the tables.
	empty := filepath.Join(t.TempDir(), "empty.db")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t)
	cfg.Database.DBName = empty

	err := Exec(context.Background(), cfg, func(ctx context.Context, d Deps) error {
		if !d.Conn.Connected() {
			t.Error("connector not connected after start")
		}
		if d.Interpreter.Model().Bound() {
			t.Error("model bound against a store without tables")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
}
