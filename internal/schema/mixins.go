package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/mixin"
)

// KeyMixin declares the integer primary key of a BioMatrix table. Every
// table names its key column after itself, so the column is configurable.
type KeyMixin struct {
	mixin.Schema
	Column string
}

func (m KeyMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id").
			StorageKey(m.Column).
			Immutable(),
	}
}

// PatientRefMixin declares the pt_id foreign key shared by the tables hanging
// off a patient.
type PatientRefMixin struct {
	mixin.Schema
}

func (PatientRefMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int("pt_id").
			Optional().
			Immutable().
			Comment("FK → tbl_pt_demographics.pt_id"),
	}
}
