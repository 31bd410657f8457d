package model

import "errors"

var (
	ErrUnknownEntity      = errors.New("unknown entity")
	ErrUnknownRelation    = errors.New("unknown relation")
	ErrUnknownField       = errors.New("unknown field")
	ErrInvalidComparison  = errors.New("invalid comparison")
	ErrUnmappedScore      = errors.New("value outside the documented domain")
	ErrRecordNotFound     = errors.New("record not found")
	ErrIncompleteRecord   = errors.New("record lacks a field required for display")
	ErrInvalidDeclaration = errors.New("invalid schema declaration")
)
