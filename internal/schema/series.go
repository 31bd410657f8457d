package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// Series is one MRI series of an exam, filled by the image pipeline.
type Series struct {
	ent.Schema
}

func (Series) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "tbl_pt_mri_series"},
		model.Summary(summarizeSeries),
	}
}

func (Series) Mixin() []ent.Mixin {
	return []ent.Mixin{
		KeyMixin{Column: "pt_mri_series_id"},
	}
}

func (Series) Fields() []ent.Field {
	return []ent.Field{
		field.String("a_no_txt").
			Optional().
			Immutable().
			Comment("FK → tbl_pt_exam.a_number_txt (accession number)"),
	}
}

func (Series) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("exam", Exam.Type).
			Ref("series").
			Unique().
			Field("a_no_txt"),
	}
}
