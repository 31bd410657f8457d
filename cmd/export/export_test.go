package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/biomatrix/internal/testdb"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	cfg := "database:\n" +
		"  driver: sqlite\n" +
		"  dbname: " + testdb.Path(t) + "\n" +
		"logging:\n" +
		"  level: error\n" +
		"export:\n" +
		"  output_dir: " + filepath.Join(dir, "reports") + "\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	root := &cobra.Command{Use: "biomatrix", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String("config", "config.yaml", "")
	root.AddCommand(NewExportCommand())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append(args, "--config", cfgPath))
	err := root.Execute()
	return out.String(), err
}

func TestCohortCommand(t *testing.T) {
	tests := []struct {
		cohort string
		want   []string
	}{
		{"bba", []string{"pt_exam_id: 10"}},
		{"malignant", []string{"pt_exam_id: 10", "pt_exam_id: 14"}},
		{"pairs", []string{"0007 A10 A12"}},
		{"pathology", []string{
			"Patient 3: Adams, C\n",
			"  Procedure 21: Lumpectom on None\n",
			"    Pathology 44: cytology C3, histopath High-risk\n",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.cohort, func(t *testing.T) {
			out, err := execute(t, "export", "cohort", tt.cohort)
			if err != nil {
				t.Fatalf("export cohort %s: %v", tt.cohort, err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestCohortCommandRejectsUnknownCohort(t *testing.T) {
	if _, err := execute(t, "export", "cohort", "everything"); err == nil {
		t.Error("unknown cohort accepted")
	}
}

func TestReportsCommand(t *testing.T) {
	tasks := filepath.Join(t.TempDir(), "tasks.txt")
	if err := os.WriteFile(tasks, []byte("7 20150301 A10\n7 20130115 A12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out")

	stdout, err := execute(t, "export", "reports", "--tasks", tasks, "--out", out)
	if err != nil {
		t.Fatalf("export reports: %v", err)
	}
	for _, name := range []string{"7CADPat_1003_20130115_A12_report.txt", "7CADPat_1001_20150301_A10_report.txt"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("stdout missing %s", name)
		}
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("report not written: %v", err)
		}
	}
}
