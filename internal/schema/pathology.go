package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// Pathology is the report on a single tissue sample. A procedure may have
// many.
type Pathology struct {
	ent.Schema
}

func (Pathology) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "tbl_pt_pathology"},
		model.Summary(summarizePathology),
		model.Computed(Diagnosis{}),
	}
}

func (Pathology) Mixin() []ent.Mixin {
	return []ent.Mixin{
		KeyMixin{Column: "pt_path_id"},
	}
}

func (Pathology) Fields() []ent.Field {
	return []ent.Field{
		field.Int("pt_procedure_id").
			Optional().
			Immutable().
			Comment("FK → tbl_pt_procedure.pt_procedure_id"),
	}
}

func (Pathology) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("procedure", Procedure.Type).
			Ref("pathologies").
			Unique().
			Field("pt_procedure_id"),
		edge.To("cancers", Cancer.Type),
		edge.From("origins", Lesion.Type).
			Ref("pathologies"),
	}
}
