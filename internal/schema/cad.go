package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// CAD is the enrollment record of a patient in the CAD study. A patient has
// at most one.
type CAD struct {
	ent.Schema
}

func (CAD) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "tbl_pt_mri_cad_record"},
		model.Summary(summarizeCAD),
	}
}

func (CAD) Mixin() []ent.Mixin {
	return []ent.Mixin{
		KeyMixin{Column: "pt_mri_cad_record_id"},
		PatientRefMixin{},
	}
}

func (CAD) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("patient", Patient.Type).
			Ref("cad").
			Unique().
			Field("pt_id"),
	}
}
