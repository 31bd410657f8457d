// Package cohort selects the exam populations used to feed the imaging
// pipeline.
package cohort

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/Alijeyrad/biomatrix/internal/history"
	"github.com/Alijeyrad/biomatrix/internal/model"
	"github.com/Alijeyrad/biomatrix/internal/query"
	"github.com/Alijeyrad/biomatrix/pkg/database"
)

const (
	// BenignByAssumptionQuery selects high-risk screening MRI exams whose CAD
	// status is "Benign by assumption".
	BenignByAssumptionQuery = "Exam.exam_tp_int=='MRI',Exam.sty_indicator_high_risk_yn==True,Exam.mri_cad_status_txt=='Benign by assumption'"

	// SuspiciousFindingsQuery selects findings with birads 4, 5 or 6.
	SuspiciousFindingsQuery = "Finding.all_birads_scr_int>=4,Finding.all_birads_scr_int<=6"

	// DefaultPriorGap is the minimum time between a benign-by-assumption exam
	// and the prior exam it is paired with.
	DefaultPriorGap = 365 * 24 * time.Hour
)

// Selector builds cohorts through the query interpreter. Every selection runs
// on the session it is given; with a nil session one is taken from the
// connector for the call and closed before returning.
type Selector struct {
	in *query.Interpreter
	m  *model.Model
}

func New(in *query.Interpreter) *Selector {
	return &Selector{in: in, m: in.Model()}
}

// BenignByAssumption returns the benign-by-assumption MRI exams.
func (s *Selector) BenignByAssumption(ctx context.Context, sess *database.Session) ([]*model.Record, error) {
	sess, release, err := s.session(sess)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.in.Process(ctx, BenignByAssumptionQuery, sess)
}

// MalignantFindingExams returns the MRI exams with at least one finding of
// birads 4 or above, each exam once.
func (s *Selector) MalignantFindingExams(ctx context.Context, sess *database.Session) ([]*model.Record, error) {
	sess, release, err := s.session(sess)
	if err != nil {
		return nil, err
	}
	defer release()

	findings, err := s.in.Process(ctx, SuspiciousFindingsQuery, sess)
	if err != nil {
		return nil, err
	}

	var exams []*model.Record
	for _, f := range findings {
		exam, err := s.m.RelatedOne(ctx, sess, f, "exam")
		if err != nil {
			return nil, err
		}
		if exam == nil {
			continue
		}
		if tp, _ := exam.String("exam_tp_int"); tp == "MRI" {
			exams = append(exams, exam)
		}
	}
	exams = lo.UniqBy(exams, func(r *model.Record) string { return fmt.Sprint(r.Key()) })
	if exams == nil {
		exams = []*model.Record{}
	}
	return exams, nil
}

// ProcedurePathologies is a procedure with its pathology reports.
type ProcedurePathologies struct {
	Procedure   *model.Record
	Pathologies []*model.Record
}

// PatientPathologies is a patient with every procedure and its reports.
type PatientPathologies struct {
	Patient    *model.Record
	Procedures []ProcedurePathologies
}

// PathologyListing returns every patient ordered by last name, with their
// procedures and pathology reports.
func (s *Selector) PathologyListing(ctx context.Context, sess *database.Session) ([]PatientPathologies, error) {
	sess, release, err := s.session(sess)
	if err != nil {
		return nil, err
	}
	defer release()

	patients, err := s.patientsByName(ctx, sess)
	if err != nil {
		return nil, err
	}

	out := make([]PatientPathologies, 0, len(patients))
	for _, p := range patients {
		procs, err := s.m.Related(ctx, sess, p, "procedures")
		if err != nil {
			return nil, err
		}
		entry := PatientPathologies{Patient: p, Procedures: make([]ProcedurePathologies, 0, len(procs))}
		for _, proc := range procs {
			paths, err := s.m.Related(ctx, sess, proc, "pathologies")
			if err != nil {
				return nil, err
			}
			entry.Procedures = append(entry.Procedures, ProcedurePathologies{Procedure: proc, Pathologies: paths})
		}
		out = append(out, entry)
	}
	return out, nil
}

// PatientHistory is a patient with the merged exam/procedure timeline.
type PatientHistory struct {
	Patient *model.Record
	History []history.Entry
}

// Histories returns the merged history of every patient.
func (s *Selector) Histories(ctx context.Context, sess *database.Session) ([]PatientHistory, error) {
	sess, release, err := s.session(sess)
	if err != nil {
		return nil, err
	}
	defer release()

	patients, err := s.in.Process(ctx, "Patient", sess)
	if err != nil {
		return nil, err
	}
	out := make([]PatientHistory, 0, len(patients))
	for _, p := range patients {
		h, err := history.ForPatient(ctx, s.m, sess, p)
		if err != nil {
			return nil, err
		}
		out = append(out, PatientHistory{Patient: p, History: h})
	}
	return out, nil
}

// Pair is a benign-by-assumption exam and the prior exam it is compared
// against.
type Pair struct {
	CADPatient string
	Exam       *model.Record
	Prior      *model.Record
}

// PriorPairs pairs each benign-by-assumption exam with the most recent
// high-risk exam of the same patient taken at least gap earlier. Both exams
// need a numeric DICOM id. Only the first pair per CAD patient is kept.
func (s *Selector) PriorPairs(ctx context.Context, sess *database.Session, gap time.Duration) ([]Pair, error) {
	sess, release, err := s.session(sess)
	if err != nil {
		return nil, err
	}
	defer release()

	bba, err := s.BenignByAssumption(ctx, sess)
	if err != nil {
		return nil, err
	}

	var pairs []Pair
	for _, exam := range bba {
		pair, ok, err := s.prior(ctx, sess, exam, gap)
		if err != nil {
			return nil, err
		}
		if ok {
			pairs = append(pairs, pair)
		}
	}
	pairs = lo.UniqBy(pairs, func(p Pair) string { return p.CADPatient })
	if pairs == nil {
		pairs = []Pair{}
	}
	return pairs, nil
}

func (s *Selector) prior(ctx context.Context, sess *database.Session, exam *model.Record, gap time.Duration) (Pair, bool, error) {
	date, err := exam.Time(history.ExamDateColumn)
	if err != nil || date == nil || !numericDICOM(exam) {
		return Pair{}, false, err
	}
	patient, err := s.m.RelatedOne(ctx, sess, exam, "patient")
	if err != nil || patient == nil {
		return Pair{}, false, err
	}
	cad, err := s.m.RelatedOne(ctx, sess, patient, "cad")
	if err != nil || cad == nil {
		return Pair{}, false, err
	}
	cadNo, ok := cad.String("cad_pt_no_txt")
	if !ok {
		return Pair{}, false, nil
	}

	exams, err := s.m.Related(ctx, sess, patient, "exams")
	if err != nil {
		return Pair{}, false, err
	}
	candidates := lo.Filter(exams, func(e *model.Record, _ int) bool {
		flag, err := e.Flag("sty_indicator_high_risk_yn")
		dicom, ok := e.String("exam_img_dicom_txt")
		return err == nil && flag != nil && *flag && ok && dicom != ""
	})
	// Most recent first.
	slices.Reverse(candidates)

	for _, c := range candidates {
		d, err := c.Time(history.ExamDateColumn)
		if err != nil {
			return Pair{}, false, err
		}
		if d == nil || date.Sub(*d) <= gap {
			continue
		}
		if !numericDICOM(c) {
			return Pair{}, false, nil
		}
		return Pair{CADPatient: cadNo, Exam: exam, Prior: c}, true, nil
	}
	return Pair{}, false, nil
}

func (s *Selector) session(sess *database.Session) (*database.Session, func(), error) {
	if sess != nil {
		return sess, func() {}, nil
	}
	own, err := s.in.Session()
	if err != nil {
		return nil, nil, err
	}
	return own, func() { _ = own.Close() }, nil
}

func numericDICOM(r *model.Record) bool {
	v, ok := r.String("exam_img_dicom_txt")
	if !ok || v == "" {
		return false
	}
	for _, c := range v {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (s *Selector) patientsByName(ctx context.Context, sess *database.Session) ([]*model.Record, error) {
	patients, err := s.in.Process(ctx, "Patient", sess)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(patients, func(a, b *model.Record) int {
		an, aok := a.String("anony_last_nm_txt")
		bn, bok := b.String("anony_last_nm_txt")
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		return cmp.Compare(an, bn)
	})
	return patients, nil
}
