// Package history merges a patient's exams and procedures into one
// timeline.
package history

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// Kind tags a timeline entry.
type Kind string

const (
	KindExam      Kind = "exam"
	KindProcedure Kind = "procedure"
)

// Date columns the timeline is ordered by.
const (
	ExamDateColumn      = "exam_dt_datetime"
	ProcedureDateColumn = "proc_dt_datetime"
)

// Entry is one exam or procedure on a patient's timeline. Date is nil when
// the record has no date.
type Entry struct {
	Kind   Kind
	Record *model.Record
	Date   *time.Time
}

// Merge orders exams and procedures by date ascending with undated records
// last. Equal dates keep exams before procedures and each input's own
// order.
func Merge(exams, procedures []*model.Record) ([]Entry, error) {
	entries := make([]Entry, 0, len(exams)+len(procedures))
	for _, in := range []struct {
		kind Kind
		col  string
		recs []*model.Record
	}{
		{KindExam, ExamDateColumn, exams},
		{KindProcedure, ProcedureDateColumn, procedures},
	} {
		for _, r := range in.recs {
			d, err := r.Time(in.col)
			if err != nil {
				return nil, fmt.Errorf("%s %v: %w", in.kind, r.Key(), err)
			}
			entries = append(entries, Entry{Kind: in.kind, Record: r, Date: d})
		}
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return model.CompareNullsLast(a.Date, b.Date)
	})
	return entries, nil
}

// ForPatient loads the exams and procedures of a patient record and merges
// them.
func ForPatient(ctx context.Context, m *model.Model, q model.Querier, patient *model.Record) ([]Entry, error) {
	exams, err := m.Related(ctx, q, patient, "exams")
	if err != nil {
		return nil, err
	}
	procedures, err := m.Related(ctx, q, patient, "procedures")
	if err != nil {
		return nil, err
	}
	return Merge(exams, procedures)
}
