package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// Patient is the base record of every person entering the program.
type Patient struct {
	ent.Schema
}

func (Patient) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "tbl_pt_demographics"},
		model.Summary(summarizePatient),
	}
}

func (Patient) Mixin() []ent.Mixin {
	return []ent.Mixin{
		KeyMixin{Column: "pt_id"},
	}
}

func (Patient) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("exams", Exam.Type).
			Annotations(model.OrderBy("exam_dt_datetime")),
		edge.To("procedures", Procedure.Type).
			Annotations(model.OrderBy("proc_dt_datetime")),
		edge.To("cad", CAD.Type).
			Unique(),
	}
}
