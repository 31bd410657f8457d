package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// Procedure is an invasive action, radiological (fine needle) or surgical
// (lumpectomy). It should have one or more pathology reports.
type Procedure struct {
	ent.Schema
}

func (Procedure) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "tbl_pt_procedure"},
		model.Summary(summarizeProcedure),
	}
}

func (Procedure) Mixin() []ent.Mixin {
	return []ent.Mixin{
		KeyMixin{Column: "pt_procedure_id"},
		PatientRefMixin{},
	}
}

func (Procedure) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("patient", Patient.Type).
			Ref("procedures").
			Unique().
			Field("pt_id"),
		edge.To("pathologies", Pathology.Type),
	}
}
