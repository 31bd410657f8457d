package model

import (
	"context"
	"fmt"
	"slices"

	"entgo.io/ent/dialect/sql"
)

// Querier runs read statements against a store. *database.Session satisfies
// it.
type Querier interface {
	Dialect() string
	Query(ctx context.Context, query string, args []any, rows *sql.Rows) error
}

// Bind discovers the physical columns of every entity through q. Either every
// entity is bound or, on error, none of the previous bindings change.
func (m *Model) Bind(ctx context.Context, q Querier) error {
	m.bindMu.Lock()
	defer m.bindMu.Unlock()
	return m.bind(ctx, q)
}

func (m *Model) bind(ctx context.Context, q Querier) error {
	found := make([][]string, len(m.entities))
	for i, e := range m.entities {
		cols, err := discover(ctx, q, e)
		if err != nil {
			return fmt.Errorf("bind %s: %w", e.Name, err)
		}
		found[i] = cols
	}
	for i, e := range m.entities {
		e.setColumns(found[i])
	}
	return nil
}

// Bound reports whether every entity has its columns.
func (m *Model) Bound() bool {
	for _, e := range m.entities {
		if !e.Bound() {
			return false
		}
	}
	return true
}

func (m *Model) ensureBound(ctx context.Context, q Querier) error {
	if m.Bound() {
		return nil
	}
	m.bindMu.Lock()
	defer m.bindMu.Unlock()
	if m.Bound() {
		return nil
	}
	return m.bind(ctx, q)
}

// discover reads the column list of e's table from an empty result set.
func discover(ctx context.Context, q Querier, e *Entity) ([]string, error) {
	query, args := sql.Dialect(q.Dialect()).
		Select().
		From(sql.Table(e.Table)).
		Where(sql.False()).
		Query()

	var rows sql.Rows
	if err := q.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	for _, c := range e.declared {
		if !slices.Contains(cols, c) {
			return nil, fmt.Errorf("%w: declared column %s.%s does not exist", ErrInvalidDeclaration, e.Table, c)
		}
	}
	for _, a := range e.attrs {
		for _, c := range a.Columns() {
			if !slices.Contains(cols, c) {
				return nil, fmt.Errorf("%w: %s.%s needs missing column %s", ErrInvalidDeclaration, e.Name, a.Name(), c)
			}
		}
	}
	return cols, nil
}

// Select returns the rows of e matching every condition. With no conditions
// every row is returned, in store order.
func (m *Model) Select(ctx context.Context, q Querier, e *Entity, conds ...Condition) ([]*Record, error) {
	if err := m.ensureBound(ctx, q); err != nil {
		return nil, err
	}
	return m.selectWhere(ctx, q, e, func(t *sql.SelectTable) (*sql.Predicate, error) {
		if len(conds) == 0 {
			return nil, nil
		}
		preds := make([]*sql.Predicate, 0, len(conds))
		for _, c := range conds {
			p, err := c.compile(e, t)
			if err != nil {
				return nil, err
			}
			preds = append(preds, p)
		}
		return sql.And(preds...), nil
	})
}

// Get returns the record of e with the given primary key.
func (m *Model) Get(ctx context.Context, q Querier, e *Entity, key any) (*Record, error) {
	recs, err := m.Select(ctx, q, e, Condition{Field: e.Key, Op: OpEQ, Value: key})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %s %s=%v", ErrRecordNotFound, e.Name, e.Key, key)
	}
	return recs[0], nil
}

func (m *Model) selectWhere(ctx context.Context, q Querier, e *Entity, where func(*sql.SelectTable) (*sql.Predicate, error)) ([]*Record, error) {
	t := sql.Table(e.Table)
	sel := sql.Dialect(q.Dialect()).Select().From(t)

	p, err := where(t)
	if err != nil {
		return nil, err
	}
	if p != nil {
		sel.Where(p)
	}

	query, args := sel.Query()
	var rows sql.Rows
	if err := q.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	return scanRecords(e, &rows)
}
