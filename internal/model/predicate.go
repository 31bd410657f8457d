package model

import (
	"fmt"

	"entgo.io/ent/dialect/sql"
)

// Condition is one comparison of a column or computed attribute against a
// literal. Value is nil, bool, string, int64 or float64.
type Condition struct {
	Field string
	Op    Op
	Value any
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}

func (c Condition) compile(e *Entity, t *sql.SelectTable) (*sql.Predicate, error) {
	if e.HasColumn(c.Field) {
		return ColumnPredicate(t.C(c.Field), c.Op, c.Value)
	}
	if a, ok := e.Attribute(c.Field); ok {
		return a.Predicate(t, c.Op, c.Value)
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, e.Name, c.Field)
}

// ColumnPredicate compiles a comparison on a single column. Null and boolean
// literals only support equality and inequality.
func ColumnPredicate(col string, op Op, v any) (*sql.Predicate, error) {
	switch v := v.(type) {
	case nil:
		switch op {
		case OpEQ:
			return sql.IsNull(col), nil
		case OpNEQ:
			return sql.NotNull(col), nil
		}
		return nil, fmt.Errorf("%w: %s %s None", ErrInvalidComparison, col, op)
	case bool:
		switch op {
		case OpEQ:
			return sql.EQ(col, v), nil
		case OpNEQ:
			return sql.Not(sql.EQ(col, v)), nil
		}
		return nil, fmt.Errorf("%w: %s %s %v", ErrInvalidComparison, col, op, v)
	}

	switch op {
	case OpEQ:
		return sql.EQ(col, v), nil
	case OpNEQ:
		return sql.NEQ(col, v), nil
	case OpLT:
		return sql.LT(col, v), nil
	case OpLTE:
		return sql.LTE(col, v), nil
	case OpGT:
		return sql.GT(col, v), nil
	case OpGTE:
		return sql.GTE(col, v), nil
	default:
		return nil, fmt.Errorf("%w: operator %q", ErrInvalidComparison, op)
	}
}
