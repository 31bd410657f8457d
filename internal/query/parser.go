package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/Alijeyrad/biomatrix/internal/model"
)

var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Op", Pattern: `==|!=|<=|>=|<|>`},
	{Name: "Punct", Pattern: `[.,]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// queryNode is the grammar of a query string:
//
//	query           := entity_name | comparison_list
//	comparison_list := comparison ("," comparison)*
//	comparison      := entity_name "." field op literal
//	literal         := string | number | True | False | None
//
// The first comparison shares its entity name with the bare form, so it is
// split into the leading identifier and an optional tail.
type queryNode struct {
	Pos    lexer.Position
	Entity string    `parser:"@Ident"`
	Tail   *tailNode `parser:"( \".\" @@ )?"`
}

type tailNode struct {
	Field string            `parser:"@Ident"`
	Op    string            `parser:"@Op"`
	Value *literalNode      `parser:"@@"`
	Rest  []*comparisonNode `parser:"( \",\" @@ )*"`
}

type comparisonNode struct {
	Pos    lexer.Position
	Entity string       `parser:"@Ident \".\""`
	Field  string       `parser:"@Ident"`
	Op     string       `parser:"@Op"`
	Value  *literalNode `parser:"@@"`
}

type literalNode struct {
	Pos     lexer.Position
	String  *string `parser:"  @String"`
	Number  *string `parser:"| @Number"`
	Keyword *string `parser:"| @( \"True\" | \"False\" | \"None\" )"`
}

var queryParser = participle.MustBuild[queryNode](
	participle.Lexer(queryLexer),
	participle.Elide("Whitespace"),
)

// Parse turns a query string into a Query. It only checks syntax; entity
// and field names are resolved when the query runs.
//
// Every comparison must name the same entity; combining entities would need
// a join, which is not supported.
func Parse(src string) (*Query, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrQuerySyntax)
	}

	node, err := queryParser.ParseString("", src)
	if err != nil {
		return nil, syntaxError(err)
	}

	q := &Query{Entity: node.Entity}
	if node.Tail == nil {
		return q, nil
	}

	first := &comparisonNode{
		Pos:    node.Pos,
		Entity: node.Entity,
		Field:  node.Tail.Field,
		Op:     node.Tail.Op,
		Value:  node.Tail.Value,
	}
	for _, n := range append([]*comparisonNode{first}, node.Tail.Rest...) {
		c, err := n.comparison()
		if err != nil {
			return nil, err
		}
		if c.Entity != q.Entity {
			return nil, fmt.Errorf("%w: comparison %s refers to %s but the query selects %s; queries across entities are not supported",
				ErrQuerySyntax, c, c.Entity, q.Entity)
		}
		q.Comparisons = append(q.Comparisons, c)
	}
	return q, nil
}

func syntaxError(err error) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		return fmt.Errorf("%w: %s at offset %d", ErrQuerySyntax, perr.Message(), perr.Position().Offset)
	}
	return fmt.Errorf("%w: %v", ErrQuerySyntax, err)
}

func (n *comparisonNode) comparison() (Comparison, error) {
	lit, err := n.Value.literal()
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		Entity: n.Entity,
		Field:  n.Field,
		Op:     model.Op(n.Op),
		Value:  lit,
		Pos:    n.Pos.Offset,
	}, nil
}

func (n *literalNode) literal() (Literal, error) {
	switch {
	case n.String != nil:
		return Literal{Kind: LitString, Str: unquote(*n.String)}, nil
	case n.Number != nil:
		text := *n.Number
		if !strings.ContainsAny(text, ".eE") {
			if i, err := strconv.ParseInt(text, 10, 64); err == nil {
				return Literal{Kind: LitInt, Int: i}, nil
			}
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Literal{}, fmt.Errorf("%w: malformed number %q at offset %d", ErrQuerySyntax, text, n.Pos.Offset)
		}
		return Literal{Kind: LitFloat, Float: f}, nil
	}

	switch *n.Keyword {
	case "True":
		return Literal{Kind: LitBool, Bool: true}, nil
	case "False":
		return Literal{Kind: LitBool, Bool: false}, nil
	default:
		return Literal{Kind: LitNone}, nil
	}
}

// unquote strips the quotes of a string token and resolves backslash
// escapes. Both quote styles are accepted, so strconv.Unquote does not fit.
func unquote(tok string) string {
	body := tok[1 : len(tok)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
