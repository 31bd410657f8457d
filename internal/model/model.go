// Package model turns ent schema declarations into a runtime description of
// the BioMatrix tables and reads records through it.
//
// Only keys and foreign keys are declared in the schemas. The remaining
// columns of every table are discovered when the model is bound to a store,
// so the physical column list is never maintained by hand.
package model

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Model is the set of declared entities.
type Model struct {
	entities []*Entity
	byName   map[string]*Entity

	bindMu sync.Mutex
}

type declaration struct {
	schema ent.Interface
	entity *Entity
	// fieldColumns maps ent field names to storage columns.
	fieldColumns map[string]string
	edges        []*edge.Descriptor
}

// New builds a model from ent schemas. Every edge must point at a schema in
// the list, inverse edges must reference an existing edge, and every
// relation must name its join columns.
func New(schemas ...ent.Interface) (*Model, error) {
	decls := make([]*declaration, 0, len(schemas))
	byName := make(map[string]*declaration, len(schemas))

	for _, s := range schemas {
		d, err := declare(s)
		if err != nil {
			return nil, err
		}
		if _, dup := byName[d.entity.Name]; dup {
			return nil, fmt.Errorf("%w: entity %s declared twice", ErrInvalidDeclaration, d.entity.Name)
		}
		decls = append(decls, d)
		byName[d.entity.Name] = d
	}

	consumed := make(map[*edge.Descriptor]bool)
	for _, d := range decls {
		for _, ed := range d.edges {
			if ed.Inverse {
				continue
			}
			target, ok := byName[ed.Type]
			if !ok {
				return nil, fmt.Errorf("%w: edge %s.%s points at undeclared entity %q", ErrInvalidDeclaration, d.entity.Name, ed.Name, ed.Type)
			}
			inv := findInverse(target, d.entity.Name, ed.Name)
			if inv != nil {
				consumed[inv] = true
			}
			own, mirror, err := relate(d, target, ed, inv)
			if err != nil {
				return nil, err
			}
			d.entity.relations = append(d.entity.relations, own)
			if mirror != nil {
				target.entity.relations = append(target.entity.relations, mirror)
			}
		}
	}

	for _, d := range decls {
		for _, ed := range d.edges {
			if ed.Inverse && !consumed[ed] {
				return nil, fmt.Errorf("%w: inverse edge %s.%s references missing edge %s.%s",
					ErrInvalidDeclaration, d.entity.Name, ed.Name, ed.Type, ed.RefName)
			}
		}
		// Keep relations in the order edges were declared on the entity.
		sortRelations(d)
	}

	m := &Model{byName: make(map[string]*Entity, len(decls))}
	for _, d := range decls {
		m.entities = append(m.entities, d.entity)
		m.byName[d.entity.Name] = d.entity
	}
	return m, nil
}

// Entities returns the entities in declaration order.
func (m *Model) Entities() []*Entity {
	out := make([]*Entity, len(m.entities))
	copy(out, m.entities)
	return out
}

// Entity looks up an entity by its declared name.
func (m *Model) Entity(name string) (*Entity, error) {
	e, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, name)
	}
	return e, nil
}

func declare(s ent.Interface) (*declaration, error) {
	rt := reflect.TypeOf(s)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	name := rt.Name()

	e := &Entity{Name: name, Table: snake(name)}
	d := &declaration{schema: s, entity: e, fieldColumns: map[string]string{}}

	for _, a := range s.Annotations() {
		switch a := a.(type) {
		case entsql.Annotation:
			if a.Table != "" {
				e.Table = a.Table
			}
		case *entsql.Annotation:
			if a != nil && a.Table != "" {
				e.Table = a.Table
			}
		case computedAnnotation:
			e.attrs = append(e.attrs, a.attr)
		case summaryAnnotation:
			e.summary = a.fn
		}
	}

	var fields []ent.Field
	for _, mx := range s.Mixin() {
		fields = append(fields, mx.Fields()...)
	}
	fields = append(fields, s.Fields()...)

	for _, f := range fields {
		fd := f.Descriptor()
		if fd.Err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidDeclaration, name, fd.Name, fd.Err)
		}
		col := storageColumn(fd)
		d.fieldColumns[fd.Name] = col
		if fd.Name == "id" {
			e.Key = col
		}
		e.declared = append(e.declared, col)
	}
	if e.Key == "" {
		return nil, fmt.Errorf("%w: %s declares no id field", ErrInvalidDeclaration, name)
	}

	for _, ed := range s.Edges() {
		d.edges = append(d.edges, ed.Descriptor())
	}
	return d, nil
}

func storageColumn(fd *field.Descriptor) string {
	if fd.StorageKey != "" {
		return fd.StorageKey
	}
	return fd.Name
}

func findInverse(target *declaration, owner, name string) *edge.Descriptor {
	for _, ed := range target.edges {
		if ed.Inverse && ed.Type == owner && ed.RefName == name {
			return ed
		}
	}
	return nil
}

// relate builds the relation for an assoc edge and, when an inverse edge is
// declared on the target, the mirrored relation.
func relate(owner, target *declaration, ed, inv *edge.Descriptor) (*Relation, *Relation, error) {
	where := owner.entity.Name + "." + ed.Name
	ownerCol := owner.entity.Key
	for _, a := range ed.Annotations {
		if ref, ok := a.(referenceAnnotation); ok {
			ownerCol = ref.column
		}
	}
	order := ""
	for _, a := range ed.Annotations {
		if o, ok := a.(orderAnnotation); ok {
			order = o.column
		}
	}

	kind := OneToMany
	switch {
	case isJunction(ed):
		kind = ManyToMany
	case ed.Unique && inv != nil && inv.Unique:
		kind = OneToOne
	case ed.Unique:
		kind = ManyToOne
	case inv != nil && !inv.Unique:
		kind = ManyToMany
	}

	own := &Relation{Name: ed.Name, Kind: kind, Target: target.entity.Name, OrderBy: order}
	var mirror *Relation
	if inv != nil {
		own.Inverse = inv.Name
		mirror = &Relation{Name: inv.Name, Target: owner.entity.Name, Inverse: ed.Name}
	}

	switch kind {
	case ManyToMany:
		if ed.StorageKey == nil || ed.StorageKey.Table == "" || len(ed.StorageKey.Columns) != 2 {
			return nil, nil, fmt.Errorf("%w: %s needs a junction table and two columns", ErrInvalidDeclaration, where)
		}
		// edge.Columns(owner, target): the first column references the edge owner.
		own.Junction = ed.StorageKey.Table
		own.JunctionLocal, own.JunctionRemote = ed.StorageKey.Columns[0], ed.StorageKey.Columns[1]
		own.LocalColumn, own.RemoteColumn = ownerCol, target.entity.Key
		if mirror != nil {
			mirror.Kind = ManyToMany
			mirror.Junction = own.Junction
			mirror.JunctionLocal, mirror.JunctionRemote = own.JunctionRemote, own.JunctionLocal
			mirror.LocalColumn, mirror.RemoteColumn = target.entity.Key, ownerCol
		}

	case ManyToOne:
		// The foreign key lives on the owner and points at the target.
		fk, err := foreignKey(owner, ed, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", where, err)
		}
		own.LocalColumn, own.RemoteColumn = fk, target.entity.Key
		if mirror != nil {
			mirror.Kind = OneToMany
			mirror.LocalColumn, mirror.RemoteColumn = target.entity.Key, fk
		}

	default: // OneToMany, OneToOne: the foreign key lives on the target.
		fk, err := foreignKey(target, inv, ed)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", where, err)
		}
		own.LocalColumn, own.RemoteColumn = ownerCol, fk
		if mirror != nil {
			mirror.Kind = ManyToOne
			if kind == OneToOne {
				mirror.Kind = OneToOne
			}
			mirror.LocalColumn, mirror.RemoteColumn = fk, ownerCol
		}
	}
	return own, mirror, nil
}

func isJunction(ed *edge.Descriptor) bool {
	return ed.StorageKey != nil && ed.StorageKey.Table != ""
}

// foreignKey resolves the foreign-key column stored on holder. The column is
// taken from the edge's Field (an ent field name of holder) or from a storage
// key column on either edge.
func foreignKey(holder *declaration, edges ...*edge.Descriptor) (string, error) {
	for _, ed := range edges {
		if ed == nil {
			continue
		}
		if ed.Field != "" {
			col, ok := holder.fieldColumns[ed.Field]
			if !ok {
				return "", fmt.Errorf("%w: field %q is not declared on %s", ErrInvalidDeclaration, ed.Field, holder.entity.Name)
			}
			return col, nil
		}
	}
	for _, ed := range edges {
		if ed != nil && ed.StorageKey != nil && len(ed.StorageKey.Columns) == 1 {
			return ed.StorageKey.Columns[0], nil
		}
	}
	return "", fmt.Errorf("%w: no foreign key column declared on %s", ErrInvalidDeclaration, holder.entity.Name)
}

func sortRelations(d *declaration) {
	rank := make(map[string]int, len(d.edges))
	for i, ed := range d.edges {
		rank[ed.Name] = i
	}
	rels := d.entity.relations
	for i := 1; i < len(rels); i++ {
		for j := i; j > 0 && rank[rels[j].Name] < rank[rels[j-1].Name]; j-- {
			rels[j], rels[j-1] = rels[j-1], rels[j]
		}
	}
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
