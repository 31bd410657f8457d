package schema

import (
	"fmt"
	"slices"

	"entgo.io/ent/dialect/sql"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

const biradsColumn = "all_birads_scr_int"

// SeverityIncomplete is the label of a missing or zero birads score.
const SeverityIncomplete = "Incomplete"

// severityLabels is indexed by birads score.
var severityLabels = [...]string{
	SeverityIncomplete,
	"Negative",
	"Benign",
	"Probably benign",
	"Suspicious abnormality",
	"Highly suggestive of malignancy",
	"Known biopsy/proven malignancy",
}

// SeverityLabel maps a birads score to its label. A nil score is
// incomplete; scores outside 0..6 are rejected.
func SeverityLabel(birads *int) (string, error) {
	if birads == nil {
		return SeverityIncomplete, nil
	}
	if *birads < 0 || *birads >= len(severityLabels) {
		return "", fmt.Errorf("%w: birads %d", model.ErrUnmappedScore, *birads)
	}
	return severityLabels[*birads], nil
}

// SeverityLabels lists every label in birads order.
func SeverityLabels() []string {
	return slices.Clone(severityLabels[:])
}

// Severity is the computed Finding.severity_label attribute.
type Severity struct{}

func (Severity) Name() string { return "severity_label" }

func (Severity) Columns() []string { return []string{biradsColumn} }

func (Severity) Value(r *model.Record) (any, error) {
	score, err := r.Int(biradsColumn)
	if err != nil {
		return nil, err
	}
	return SeverityLabel(score)
}

func (Severity) Predicate(t *sql.SelectTable, op model.Op, v any) (*sql.Predicate, error) {
	label, ok := v.(string)
	if !ok || (op != model.OpEQ && op != model.OpNEQ) {
		return nil, fmt.Errorf("%w: severity_label %s %v", model.ErrInvalidComparison, op, v)
	}
	score := slices.Index(severityLabels[:], label)
	if score < 0 {
		return nil, fmt.Errorf("%w: unknown severity label %q", model.ErrInvalidComparison, label)
	}

	col := t.C(biradsColumn)
	var p *sql.Predicate
	if score == 0 {
		p = sql.Or(sql.IsNull(col), sql.EQ(col, 0))
	} else {
		p = sql.And(sql.NotNull(col), sql.EQ(col, score))
	}
	if op == model.OpNEQ {
		p = sql.Not(p)
	}
	return p, nil
}
