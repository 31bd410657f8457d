package history_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/Alijeyrad/biomatrix/internal/history"
	"github.com/Alijeyrad/biomatrix/internal/model"
	"github.com/Alijeyrad/biomatrix/internal/schema"
	"github.com/Alijeyrad/biomatrix/internal/testdb"
)

func record(e *model.Entity, key int64, col string, date any) *model.Record {
	return model.NewRecord(e, []string{e.Key, col}, []any{key, date})
}

func day(d int) time.Time {
	return time.Date(2015, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestMerge(t *testing.T) {
	m, err := schema.NewModel()
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	exam, _ := m.Entity("Exam")
	proc, _ := m.Entity("Procedure")

	ex := func(key int64, date any) *model.Record { return record(exam, key, history.ExamDateColumn, date) }
	pr := func(key int64, date any) *model.Record { return record(proc, key, history.ProcedureDateColumn, date) }

	tests := []struct {
		name       string
		exams      []*model.Record
		procedures []*model.Record
		want       []string
	}{
		{"empty", nil, nil, []string{}},
		{"exams only", []*model.Record{ex(1, day(3)), ex(2, day(1))}, nil, []string{"exam 2", "exam 1"}},
		{"interleaved", []*model.Record{ex(1, day(1)), ex(2, day(5))}, []*model.Record{pr(3, day(3))},
			[]string{"exam 1", "procedure 3", "exam 2"}},
		{"nulls last", []*model.Record{ex(1, nil), ex(2, day(9))}, []*model.Record{pr(3, nil), pr(4, day(2))},
			[]string{"procedure 4", "exam 2", "exam 1", "procedure 3"}},
		{"ties keep exams first", []*model.Record{ex(1, day(4)), ex(2, day(4))}, []*model.Record{pr(3, day(4)), pr(4, day(4))},
			[]string{"exam 1", "exam 2", "procedure 3", "procedure 4"}},
		{"text dates", []*model.Record{ex(1, "2015-01-07 10:00:00")}, []*model.Record{pr(2, "2015-01-06")},
			[]string{"procedure 2", "exam 1"}},
		{"far future date still before null", []*model.Record{ex(1, nil)},
			[]*model.Record{pr(2, time.Date(3000, 1, 2, 0, 0, 0, 0, time.UTC))},
			[]string{"procedure 2", "exam 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := history.Merge(tt.exams, tt.procedures)
			if err != nil {
				t.Fatalf("Merge() error = %v", err)
			}
			if len(entries) != len(tt.exams)+len(tt.procedures) {
				t.Fatalf("len = %d, want %d", len(entries), len(tt.exams)+len(tt.procedures))
			}
			got := labels(entries)
			if !slices.Equal(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
			assertSorted(t, entries)
		})
	}
}

func TestMergeRejectsBadDates(t *testing.T) {
	m, _ := schema.NewModel()
	exam, _ := m.Entity("Exam")
	_, err := history.Merge([]*model.Record{record(exam, 1, history.ExamDateColumn, "yesterday")}, nil)
	if err == nil {
		t.Fatal("Merge() accepted an unparseable date")
	}
}

func TestForPatient(t *testing.T) {
	m, err := schema.NewModel()
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	sess := testdb.Session(t)
	ctx := context.Background()
	patients, _ := m.Entity("Patient")

	tests := []struct {
		patient int64
		want    []string
	}{
		// Exam 13 and procedure 20 share a date; the undated exam 11 and
		// procedure 21 come last.
		{1, []string{"exam 12", "exam 13", "procedure 20", "exam 10", "exam 11", "procedure 21"}},
		{2, []string{"exam 14"}},
		{3, []string{}},
	}
	for _, tt := range tests {
		p, err := m.Get(ctx, sess, patients, tt.patient)
		if err != nil {
			t.Fatalf("Get(%d) error = %v", tt.patient, err)
		}
		entries, err := history.ForPatient(ctx, m, sess, p)
		if err != nil {
			t.Fatalf("ForPatient(%d) error = %v", tt.patient, err)
		}
		if got := labels(entries); !slices.Equal(got, tt.want) {
			t.Errorf("patient %d history = %v, want %v", tt.patient, got, tt.want)
		}
		assertSorted(t, entries)
	}
}

func labels(entries []history.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = string(e.Kind) + " " + keyText(e.Record)
	}
	return out
}

func keyText(r *model.Record) string {
	s, _ := r.String(r.Entity().Key)
	return s
}

func assertSorted(t *testing.T, entries []history.Entry) {
	t.Helper()
	for i := 1; i < len(entries); i++ {
		if model.CompareNullsLast(entries[i-1].Date, entries[i].Date) > 0 {
			t.Errorf("entries %d and %d out of order", i-1, i)
		}
	}
}
