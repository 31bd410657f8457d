package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// Query is a parsed query string. A query either names a bare entity
// (Comparisons is empty) or lists comparisons that are AND-ed together.
type Query struct {
	Entity      string
	Comparisons []Comparison
}

// Comparison is one `Entity.field op literal` clause.
type Comparison struct {
	Entity string
	Field  string
	Op     model.Op
	Value  Literal
	Pos    int
}

// LiteralKind is the type of a literal in a query string.
type LiteralKind int

const (
	LitNone LiteralKind = iota
	LitBool
	LitString
	LitInt
	LitFloat
)

// Literal is the right-hand side of a comparison.
type Literal struct {
	Kind  LiteralKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// Value returns the literal as a Go value for predicate compilation.
func (l Literal) Value() any {
	switch l.Kind {
	case LitBool:
		return l.Bool
	case LitString:
		return l.Str
	case LitInt:
		return l.Int
	case LitFloat:
		return l.Float
	default:
		return nil
	}
}

func (l Literal) String() string {
	switch l.Kind {
	case LitBool:
		if l.Bool {
			return "True"
		}
		return "False"
	case LitString:
		return strconv.Quote(l.Str)
	case LitInt:
		return strconv.FormatInt(l.Int, 10)
	case LitFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	default:
		return "None"
	}
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s.%s%s%s", c.Entity, c.Field, c.Op, c.Value)
}

// String renders the query in canonical form.
func (q *Query) String() string {
	if len(q.Comparisons) == 0 {
		return q.Entity
	}
	parts := make([]string, len(q.Comparisons))
	for i, c := range q.Comparisons {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// Conditions converts the comparisons into model conditions.
func (q *Query) Conditions() []model.Condition {
	conds := make([]model.Condition, len(q.Comparisons))
	for i, c := range q.Comparisons {
		conds[i] = model.Condition{Field: c.Field, Op: c.Op, Value: c.Value.Value()}
	}
	return conds
}
