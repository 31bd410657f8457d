package schema

import (
	"fmt"

	"entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

const (
	DiagnosisBenign          = "Benign"
	DiagnosisHighRisk        = "High-risk"
	DiagnosisInSitu          = "In situ carcinoma"
	DiagnosisInvasive        = "Invasive carcinoma"
	DiagnosisOtherMalignancy = "Other malignancy"
)

// diagnosisFlags are checked in order; the first set flag decides the
// diagnosis, so a benign core biopsy wins over every other flag.
var diagnosisFlags = []struct {
	column string
	label  string
}{
	{"histop_core_biopsy_benign_yn", DiagnosisBenign},
	{"histop_core_biopsy_high_risk_yn", DiagnosisHighRisk},
	{"histop_tp_isc_yn", DiagnosisInSitu},
	{"histop_tp_ic_yn", DiagnosisInvasive},
}

// Diagnose derives the histopathology diagnosis of a pathology record.
func Diagnose(r *model.Record) (string, error) {
	for _, f := range diagnosisFlags {
		set, err := r.Flag(f.column)
		if err != nil {
			return "", err
		}
		if set != nil && *set {
			return f.label, nil
		}
	}
	return DiagnosisOtherMalignancy, nil
}

// Diagnosis is the computed Pathology.diagnosis attribute.
type Diagnosis struct{}

func (Diagnosis) Name() string { return "diagnosis" }

func (Diagnosis) Columns() []string {
	cols := make([]string, len(diagnosisFlags))
	for i, f := range diagnosisFlags {
		cols[i] = f.column
	}
	return cols
}

func (Diagnosis) Value(r *model.Record) (any, error) {
	return Diagnose(r)
}

// Predicate matches the rows whose derived diagnosis equals (or differs from)
// the given label.
func (Diagnosis) Predicate(t *sql.SelectTable, op model.Op, v any) (*sql.Predicate, error) {
	label, ok := v.(string)
	if !ok || (op != model.OpEQ && op != model.OpNEQ) {
		return nil, fmt.Errorf("%w: diagnosis %s %v", model.ErrInvalidComparison, op, v)
	}

	var preds []*sql.Predicate
	matched := false
	for _, f := range diagnosisFlags {
		col := t.C(f.column)
		if f.label == label {
			preds = append(preds, flagSet(col))
			matched = true
			break
		}
		preds = append(preds, flagUnset(col))
	}
	if !matched && label != DiagnosisOtherMalignancy {
		return nil, fmt.Errorf("%w: unknown diagnosis %q", model.ErrInvalidComparison, label)
	}

	p := sql.And(preds...)
	if op == model.OpNEQ {
		p = sql.Not(p)
	}
	return p, nil
}

// flagSet and flagUnset never evaluate to NULL, so their negation is exact.
func flagSet(col string) *sql.Predicate {
	return sql.And(sql.NotNull(col), sql.IsTrue(col))
}

func flagUnset(col string) *sql.Predicate {
	return sql.Or(sql.IsNull(col), sql.IsFalse(col))
}
