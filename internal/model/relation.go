package model

import (
	"context"
	"fmt"
	"slices"
	"time"

	"entgo.io/ent/dialect/sql"
)

// Related returns the records reached from r through the named relation.
// Collections with a declared order column come back sorted by it, null
// dates last; other collections keep store order.
func (m *Model) Related(ctx context.Context, q Querier, r *Record, name string) ([]*Record, error) {
	rel, ok := r.entity.Relation(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRelation, r.entity.Name, name)
	}
	target, err := m.Entity(rel.Target)
	if err != nil {
		return nil, err
	}
	if err := m.ensureBound(ctx, q); err != nil {
		return nil, err
	}

	local, ok := r.Get(rel.LocalColumn)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, r.entity.Name, rel.LocalColumn)
	}
	if local == nil {
		return []*Record{}, nil
	}

	recs, err := m.selectWhere(ctx, q, target, func(t *sql.SelectTable) (*sql.Predicate, error) {
		if rel.Kind != ManyToMany {
			return sql.EQ(t.C(rel.RemoteColumn), local), nil
		}
		j := sql.Table(rel.Junction)
		sub := sql.Dialect(q.Dialect()).Select().From(j)
		sub.Select(j.C(rel.JunctionRemote)).Where(sql.EQ(j.C(rel.JunctionLocal), local))
		return sql.In(t.C(rel.RemoteColumn), sub), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", r.entity.Name, name, err)
	}

	if rel.OrderBy != "" {
		if err := sortByDate(recs, rel.OrderBy); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// RelatedOne follows a to-one relation. It returns nil when no record is
// linked.
func (m *Model) RelatedOne(ctx context.Context, q Querier, r *Record, name string) (*Record, error) {
	rel, ok := r.entity.Relation(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRelation, r.entity.Name, name)
	}
	if !rel.Unique() {
		return nil, fmt.Errorf("%w: %s.%s is a collection", ErrUnknownRelation, r.entity.Name, name)
	}
	recs, err := m.Related(ctx, q, r, name)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return recs[0], nil
}

func sortByDate(recs []*Record, col string) error {
	dates := make(map[*Record]*time.Time, len(recs))
	for _, r := range recs {
		d, err := r.Time(col)
		if err != nil {
			return err
		}
		dates[r] = d
	}
	slices.SortStableFunc(recs, func(a, b *Record) int {
		return CompareNullsLast(dates[a], dates[b])
	})
	return nil
}
