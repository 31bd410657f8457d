package handler

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/biomatrix/internal/history"
	"github.com/Alijeyrad/biomatrix/internal/model"
	"github.com/Alijeyrad/biomatrix/internal/query"
)

type RecordHandler struct {
	in  *query.Interpreter
	log *slog.Logger
}

func NewRecordHandler(in *query.Interpreter, log *slog.Logger) *RecordHandler {
	return &RecordHandler{in: in, log: log}
}

type historyEntry struct {
	Kind   history.Kind  `json:"kind"`
	Date   *time.Time    `json:"date"`
	Record *model.Record `json:"record"`
}

// GET /patients/:id/history
func (h *RecordHandler) History(c fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return badRequest(c, "patient id must be an integer")
	}

	sess, err := h.in.Session()
	if err != nil {
		return mapError(c, h.log, err)
	}
	defer sess.Close()

	m := h.in.Model()
	e, err := m.Entity("Patient")
	if err != nil {
		return mapError(c, h.log, err)
	}
	patient, err := m.Get(c.Context(), sess, e, id)
	if err != nil {
		return mapError(c, h.log, err)
	}
	entries, err := history.ForPatient(c.Context(), m, sess, patient)
	if err != nil {
		return mapError(c, h.log, err)
	}

	out := make([]historyEntry, 0, len(entries))
	for _, en := range entries {
		out = append(out, historyEntry{Kind: en.Kind, Date: en.Date, Record: en.Record})
	}
	return ok(c, out)
}

// GET /records/:entity/:key/:relation
func (h *RecordHandler) Related(c fiber.Ctx) error {
	m := h.in.Model()
	e, err := m.Entity(c.Params("entity"))
	if err != nil {
		return mapError(c, h.log, err)
	}
	if _, found := e.Relation(c.Params("relation")); !found {
		return notFound(c, "unknown relation "+e.Name+"."+c.Params("relation"))
	}

	sess, err := h.in.Session()
	if err != nil {
		return mapError(c, h.log, err)
	}
	defer sess.Close()

	rec, err := m.Get(c.Context(), sess, e, parseKey(c.Params("key")))
	if err != nil {
		return mapError(c, h.log, err)
	}
	recs, err := m.Related(c.Context(), sess, rec, c.Params("relation"))
	if err != nil {
		return mapError(c, h.log, err)
	}
	return ok(c, recs)
}

func parseKey(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
