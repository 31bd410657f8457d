package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// Exam is one imaging visit.
type Exam struct {
	ent.Schema
}

func (Exam) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "tbl_pt_exam"},
		model.Summary(summarizeExam),
	}
}

func (Exam) Mixin() []ent.Mixin {
	return []ent.Mixin{
		KeyMixin{Column: "pt_exam_id"},
		PatientRefMixin{},
	}
}

func (Exam) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("patient", Patient.Type).
			Ref("exams").
			Unique().
			Field("pt_id"),
		edge.To("findings", Finding.Type),
		// Series rows carry the accession number, not the exam key.
		edge.To("series", Series.Type).
			Annotations(model.References("a_number_txt")),
		edge.From("lesions", Lesion.Type).
			Ref("exams"),
	}
}
