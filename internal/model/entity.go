package model

import (
	"slices"
	"sync"
)

// Kind is the cardinality of a relation as seen from its owning entity.
type Kind int

const (
	ManyToOne Kind = iota
	OneToMany
	OneToOne
	ManyToMany
)

func (k Kind) String() string {
	switch k {
	case ManyToOne:
		return "many-to-one"
	case OneToMany:
		return "one-to-many"
	case OneToOne:
		return "one-to-one"
	case ManyToMany:
		return "many-to-many"
	default:
		return "unknown"
	}
}

// Relation is one named relationship attribute of an entity.
type Relation struct {
	Name   string
	Kind   Kind
	Target string

	// LocalColumn holds the value on the owning record that identifies the
	// related rows; RemoteColumn is the target column it is matched against.
	// For many-to-many relations RemoteColumn is the target key and the
	// junction columns do the matching.
	LocalColumn  string
	RemoteColumn string

	Junction       string
	JunctionLocal  string
	JunctionRemote string

	// OrderBy is the target date column collections are sorted by.
	OrderBy string
	// Inverse names the mirrored relation on the target, if declared.
	Inverse string
}

// Unique reports whether the relation resolves to at most one record.
func (r *Relation) Unique() bool {
	return r.Kind == ManyToOne || r.Kind == OneToOne
}

// Entity is one declared table.
type Entity struct {
	Name  string
	Table string
	Key   string

	declared  []string
	relations []*Relation
	attrs     []Attribute
	summary   Summarizer

	mu      sync.RWMutex
	columns []string
}

// Relations returns the names of the entity's relationship attributes in
// declaration order.
func (e *Entity) Relations() []string {
	names := make([]string, len(e.relations))
	for i, r := range e.relations {
		names[i] = r.Name
	}
	return names
}

// Relation looks up a relation by name.
func (e *Entity) Relation(name string) (*Relation, bool) {
	for _, r := range e.relations {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Attributes returns the names of the computed attributes.
func (e *Entity) Attributes() []string {
	names := make([]string, len(e.attrs))
	for i, a := range e.attrs {
		names[i] = a.Name()
	}
	return names
}

// Attribute looks up a computed attribute by name.
func (e *Entity) Attribute(name string) (Attribute, bool) {
	for _, a := range e.attrs {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// DeclaredColumns returns the key and foreign-key columns declared in the
// schema. They are known before the entity is bound.
func (e *Entity) DeclaredColumns() []string {
	return slices.Clone(e.declared)
}

// Columns returns the physical columns discovered at bind time, in table
// order. It is nil while the entity is unbound.
func (e *Entity) Columns() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.columns)
}

// Bound reports whether columns have been discovered for the entity.
func (e *Entity) Bound() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.columns != nil
}

// HasColumn reports whether col is a physical column of the bound table.
func (e *Entity) HasColumn(col string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Contains(e.columns, col)
}

func (e *Entity) setColumns(cols []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.columns = cols
}
