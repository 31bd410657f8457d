// Package schema declares the BioMatrix tables. Only keys, foreign keys and
// relations are declared; the remaining columns come from the database.
package schema

import (
	"entgo.io/ent"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

// Entities returns every BioMatrix schema in declaration order.
func Entities() []ent.Interface {
	return []ent.Interface{
		Patient{},
		CAD{},
		Exam{},
		Finding{},
		Procedure{},
		Pathology{},
		Series{},
		Cancer{},
		Lesion{},
	}
}

// NewModel builds the runtime model of the BioMatrix schema.
func NewModel() (*model.Model, error) {
	return model.New(Entities()...)
}
