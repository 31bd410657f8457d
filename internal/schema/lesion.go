package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// Lesion links a lesion analysed by pathology back to where it was detected
// on imaging. It has no business columns of its own.
type Lesion struct {
	ent.Schema
}

func (Lesion) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "tbl_pt_exam_lesion"},
		model.Summary(summarizeLesion),
	}
}

func (Lesion) Mixin() []ent.Mixin {
	return []ent.Mixin{
		KeyMixin{Column: "pt_exam_lesion_id"},
	}
}

func (Lesion) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("findings", Finding.Type).
			StorageKey(
				edge.Table("tbl_pt_exam_finding_lesion_link"),
				edge.Columns("pt_exam_lesion_id", "pt_exam_finding_id"),
			),
		edge.To("exams", Exam.Type).
			StorageKey(
				edge.Table("tbl_pt_exam_lesion_link"),
				edge.Columns("pt_exam_lesion_id", "pt_exam_id"),
			),
		edge.To("pathologies", Pathology.Type).
			StorageKey(
				edge.Table("tbl_pt_pathology_lesion_link"),
				edge.Columns("pt_exam_lesion_id", "pt_path_id"),
			),
	}
}
