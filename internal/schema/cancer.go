package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// Cancer is the cancer type recorded for a malignant pathology, used to
// select CAD study populations.
type Cancer struct {
	ent.Schema
}

func (Cancer) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "tbl_pt_mri_cad_can_tp"},
		model.Summary(summarizeCancer),
	}
}

func (Cancer) Mixin() []ent.Mixin {
	return []ent.Mixin{
		KeyMixin{Column: "pt_mri_cad_can_tp_id"},
	}
}

func (Cancer) Fields() []ent.Field {
	return []ent.Field{
		field.Int("pt_path_id").
			Optional().
			Immutable().
			Comment("FK → tbl_pt_pathology.pt_path_id"),
	}
}

func (Cancer) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("pathology", Pathology.Type).
			Ref("cancers").
			Unique().
			Field("pt_path_id"),
	}
}
