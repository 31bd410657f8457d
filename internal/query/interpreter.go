// Package query parses BioMatrix query strings and runs them against the
// schema model.
//
// A query string is either a bare entity name, which selects every row of
// that entity, or a comma separated list of `Entity.field op literal`
// comparisons on a single entity, which are AND-ed together:
//
//	Patient
//	CAD.cad_pt_no_txt=='0042'
//	Exam.exam_tp_int=='MRI',Exam.sty_indicator_high_risk_yn==True
//
// Query text is parsed into a small AST and compiled into SQL predicates; it
// is never evaluated.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alijeyrad/biomatrix/internal/model"
	"github.com/Alijeyrad/biomatrix/pkg/database"
	"github.com/Alijeyrad/biomatrix/pkg/observability"
	"github.com/Alijeyrad/biomatrix/pkg/reqctx"
)

// Interpreter runs query strings. It is safe for concurrent use as long as
// each goroutine passes its own session (or nil).
type Interpreter struct {
	model *model.Model
	conn  *database.Connector
	log   *slog.Logger
	obs   *observability.QueryObserver
}

type Option func(*Interpreter)

func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) { in.log = l }
}

func WithObserver(o *observability.QueryObserver) Option {
	return func(in *Interpreter) { in.obs = o }
}

func New(m *model.Model, conn *database.Connector, opts ...Option) *Interpreter {
	in := &Interpreter{
		model: m,
		conn:  conn,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.obs == nil {
		in.obs = observability.NewQueryObserver()
	}
	return in
}

// Model returns the schema model queries run against.
func (in *Interpreter) Model() *model.Model { return in.model }

// Session returns a new registered session from the connector.
func (in *Interpreter) Session() (*database.Session, error) {
	if in.conn == nil {
		return nil, fmt.Errorf("%w: no connector configured", database.ErrConnection)
	}
	return in.conn.Session()
}

// Bind discovers the model's columns through a short-lived session. On
// failure the model stays unbound and binds on the first successful query.
func (in *Interpreter) Bind(ctx context.Context) error {
	sess, err := in.Session()
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := in.model.Bind(ctx, sess); err != nil {
		return err
	}
	in.log.Info("schema bound", "entities", len(in.model.Entities()), "store", sess.Params().String())
	return nil
}

// Process parses src and returns the matching records. An empty result is a
// non-nil empty slice.
//
// When sess is nil a new session is taken from the connector. It is left
// open in the connector's registry, from where it can be enumerated and
// closed.
func (in *Interpreter) Process(ctx context.Context, src string, sess *database.Session) ([]*model.Record, error) {
	return in.run(ctx, src, sess, false)
}

// Run is Process on a session of its own, taken only once the query has
// been parsed and its entity resolved, and closed before returning.
func (in *Interpreter) Run(ctx context.Context, src string) ([]*model.Record, error) {
	return in.run(ctx, src, nil, true)
}

func (in *Interpreter) run(ctx context.Context, src string, sess *database.Session, release bool) ([]*model.Record, error) {
	ctx, done := in.obs.Start(ctx, src)

	entity, recs, err := in.process(ctx, src, sess, release)
	done(entity, len(recs), err)
	log := in.log.With(reqctx.LogAttrs(ctx)...)
	if err != nil {
		log.Debug("query failed", "query", src, "error", err)
		return nil, err
	}
	log.Debug("query processed", "query", src, "entity", entity, "rows", len(recs))
	return recs, nil
}

func (in *Interpreter) process(ctx context.Context, src string, sess *database.Session, release bool) (string, []*model.Record, error) {
	q, err := Parse(src)
	if err != nil {
		return "", nil, err
	}

	// Resolve names before touching the store.
	e, err := in.model.Entity(q.Entity)
	if err != nil {
		return "", nil, err
	}

	if sess == nil {
		if sess, err = in.Session(); err != nil {
			return e.Name, nil, err
		}
		if release {
			defer sess.Close()
		}
	}

	recs, err := in.model.Select(ctx, sess, e, q.Conditions()...)
	if err != nil {
		if errors.Is(err, model.ErrUnknownField) || errors.Is(err, model.ErrInvalidComparison) {
			err = fmt.Errorf("%w: %w", ErrQuerySyntax, err)
		}
		return e.Name, nil, err
	}
	return e.Name, recs, nil
}
