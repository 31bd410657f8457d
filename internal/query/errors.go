package query

import (
	"errors"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

var (
	// ErrQuerySyntax reports query text that cannot be parsed or compiled:
	// a missing operator, an unterminated literal, an unknown field or a
	// comparison list spanning more than one entity.
	ErrQuerySyntax = errors.New("query syntax error")

	// ErrUnknownEntity reports an entity name that is not declared.
	ErrUnknownEntity = model.ErrUnknownEntity
)
