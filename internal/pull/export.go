package pull

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/Alijeyrad/biomatrix/internal/model"
	"github.com/Alijeyrad/biomatrix/internal/query"
	"github.com/Alijeyrad/biomatrix/pkg/database"
)

var (
	ErrNoCADRecord        = errors.New("no CAD record")
	ErrAmbiguousCADRecord = errors.New("more than one CAD record")
	ErrMissingExam        = errors.New("exam not found")
)

// Exporter writes the report of every exam named by a task to a sink.
type Exporter struct {
	in   *query.Interpreter
	sink Sink
	log  *slog.Logger
}

func NewExporter(in *query.Interpreter, sink Sink, log *slog.Logger) *Exporter {
	if log == nil {
		log = slog.Default()
	}
	return &Exporter{in: in, sink: sink, log: log}
}

// Run exports the reports for every task and returns the names written. A
// failing task does not stop the others; all task errors are joined into the
// returned error.
func (x *Exporter) Run(ctx context.Context, sess *database.Session, tasks []Task) ([]string, error) {
	if sess == nil {
		var err error
		if sess, err = x.in.Session(); err != nil {
			return nil, err
		}
		defer sess.Close()
	}

	var (
		written []string
		errs    []error
	)
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		names, err := x.export(ctx, sess, t)
		written = append(written, names...)
		if err != nil {
			x.log.Warn("task export failed", "task", t.String(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
		}
	}
	x.log.Info("reports exported", "tasks", len(tasks), "files", len(written), "failed", len(errs))
	return written, errors.Join(errs...)
}

func (x *Exporter) export(ctx context.Context, sess *database.Session, t Task) ([]string, error) {
	padded, err := padCAD(t.CADPatient)
	if err != nil {
		return nil, err
	}

	cads, err := x.in.Process(ctx, "CAD.cad_pt_no_txt=='"+padded+"'", sess)
	if err != nil {
		return nil, err
	}
	switch len(cads) {
	case 0:
		return nil, fmt.Errorf("%w for %s", ErrNoCADRecord, padded)
	case 1:
	default:
		return nil, fmt.Errorf("%w for %s (%d)", ErrAmbiguousCADRecord, padded, len(cads))
	}

	m := x.in.Model()
	patient, err := m.RelatedOne(ctx, sess, cads[0], "patient")
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, fmt.Errorf("%w: CAD %s has no patient", ErrNoCADRecord, padded)
	}
	exams, err := m.Related(ctx, sess, patient, "exams")
	if err != nil {
		return nil, err
	}

	wanted := []string{t.Fixed, t.Moving}
	found := map[string]bool{}
	var names []string
	for _, exam := range exams {
		acc, _ := exam.String("a_number_txt")
		if !slices.Contains(wanted, acc) {
			continue
		}
		found[acc] = true

		name, body, err := Report(t.CADPatient, padded, exam)
		if err != nil {
			return names, err
		}
		if err := x.sink.Write(ctx, name, body); err != nil {
			return names, err
		}
		x.log.Debug("report written", "file", name)
		names = append(names, name)
	}

	for _, acc := range wanted {
		if !found[acc] {
			return names, fmt.Errorf("%w: accession %s for CAD %s", ErrMissingExam, acc, padded)
		}
	}
	return names, nil
}

// Report renders the report file of an exam. raw is the CAD number as given
// in the task list and padded its four digit form.
func Report(raw, padded string, exam *model.Record) (string, []byte, error) {
	acc, _ := exam.String("a_number_txt")
	dicom, ok := exam.String("exam_img_dicom_txt")
	if !ok {
		return "", nil, fmt.Errorf("exam %s has no DICOM id", acc)
	}
	date, err := exam.Time("exam_dt_datetime")
	if err != nil {
		return "", nil, err
	}
	if date == nil {
		return "", nil, fmt.Errorf("exam %s has no study date", acc)
	}
	text, _ := exam.String("original_report_txt")

	name := fmt.Sprintf("%sCADPat_%s_%s_%s_report.txt", raw, dicom, date.Format("20060102"), acc)

	var b strings.Builder
	fmt.Fprintf(&b, "CADPat     = %s\n", padded)
	fmt.Fprintf(&b, "Accession  = %s\n", acc)
	fmt.Fprintf(&b, "Study date = %s\n", date.Format(model.TimeLayout))
	b.WriteString(text)
	return name, []byte(b.String()), nil
}

func padCAD(raw string) (string, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return "", fmt.Errorf("CAD patient %q is not a number", raw)
	}
	return fmt.Sprintf("%04d", n), nil
}
