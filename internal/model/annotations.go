package model

import (
	"entgo.io/ent/dialect/sql"
	"entgo.io/ent/schema"
)

// Op is a comparison operator as written in a query string.
type Op string

const (
	OpEQ  Op = "=="
	OpNEQ Op = "!="
	OpLT  Op = "<"
	OpLTE Op = "<="
	OpGT  Op = ">"
	OpGTE Op = ">="
)

// Attribute is a value derived from a record's columns instead of being
// stored. Attributes can be read from a record and compiled into a filter.
type Attribute interface {
	Name() string
	// Columns lists the physical columns the attribute is computed from.
	Columns() []string
	Value(r *Record) (any, error)
	Predicate(t *sql.SelectTable, op Op, v any) (*sql.Predicate, error)
}

type computedAnnotation struct {
	attr Attribute
}

func (computedAnnotation) Name() string { return "BioMatrixComputed" }

// Computed attaches a computed attribute to a schema.
//
//	func (Pathology) Annotations() []schema.Annotation {
//		return []schema.Annotation{model.Computed(Diagnosis{})}
//	}
func Computed(a Attribute) schema.Annotation {
	return computedAnnotation{attr: a}
}

type orderAnnotation struct {
	column string
}

func (orderAnnotation) Name() string { return "BioMatrixOrder" }

// OrderBy sorts a to-many edge by the given date column of the target,
// ascending, with null dates last.
func OrderBy(column string) schema.Annotation {
	return orderAnnotation{column: column}
}

type referenceAnnotation struct {
	column string
}

func (referenceAnnotation) Name() string { return "BioMatrixReference" }

// References makes an edge join on the given column of the edge owner
// instead of its primary key.
func References(column string) schema.Annotation {
	return referenceAnnotation{column: column}
}

// Summarizer renders the one-line display of a record.
type Summarizer func(r *Record) (string, error)

type summaryAnnotation struct {
	fn Summarizer
}

func (summaryAnnotation) Name() string { return "BioMatrixSummary" }

// Summary sets the one-line display of an entity's records.
func Summary(fn Summarizer) schema.Annotation {
	return summaryAnnotation{fn: fn}
}
