package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// Finding is a radiologist's evaluation of one suspicious feature seen in an
// exam.
type Finding struct {
	ent.Schema
}

func (Finding) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "tbl_pt_exam_finding"},
		model.Summary(summarizeFinding),
		model.Computed(Severity{}),
	}
}

func (Finding) Mixin() []ent.Mixin {
	return []ent.Mixin{
		KeyMixin{Column: "pt_exam_finding_id"},
	}
}

func (Finding) Fields() []ent.Field {
	return []ent.Field{
		field.Int("pt_exam_id").
			Optional().
			Immutable().
			Comment("FK → tbl_pt_exam.pt_exam_id"),
	}
}

func (Finding) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("exam", Exam.Type).
			Ref("findings").
			Unique().
			Field("pt_exam_id"),
		edge.From("lesions", Lesion.Type).
			Ref("findings"),
	}
}
