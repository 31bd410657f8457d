package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/biomatrix/internal/query"
)

type QueryHandler struct {
	in  *query.Interpreter
	log *slog.Logger
}

func NewQueryHandler(in *query.Interpreter, log *slog.Logger) *QueryHandler {
	return &QueryHandler{in: in, log: log}
}

// GET /query?q=
func (h *QueryHandler) Run(c fiber.Ctx) error {
	src := c.Query("q")
	if src == "" {
		return badRequest(c, "missing query parameter q")
	}

	recs, err := h.in.Run(c.Context(), src)
	if err != nil {
		return mapError(c, h.log, err)
	}
	return ok(c, recs)
}

type relationInfo struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Target  string `json:"target"`
	OrderBy string `json:"order_by,omitempty"`
}

type entityInfo struct {
	Name       string         `json:"name"`
	Table      string         `json:"table"`
	Key        string         `json:"key"`
	Relations  []relationInfo `json:"relations"`
	Computed   []string       `json:"computed"`
	Columns    []string       `json:"columns"`
	ColumnsSet bool           `json:"bound"`
}

// GET /entities
func (h *QueryHandler) Entities(c fiber.Ctx) error {
	entities := h.in.Model().Entities()
	out := make([]entityInfo, 0, len(entities))
	for _, e := range entities {
		info := entityInfo{
			Name:       e.Name,
			Table:      e.Table,
			Key:        e.Key,
			Relations:  []relationInfo{},
			Computed:   e.Attributes(),
			Columns:    e.Columns(),
			ColumnsSet: e.Bound(),
		}
		for _, name := range e.Relations() {
			rel, _ := e.Relation(name)
			info.Relations = append(info.Relations, relationInfo{
				Name:    rel.Name,
				Kind:    rel.Kind.String(),
				Target:  rel.Target,
				OrderBy: rel.OrderBy,
			})
		}
		out = append(out, info)
	}
	return ok(c, out)
}
