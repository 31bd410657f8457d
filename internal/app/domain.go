package app

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/Alijeyrad/biomatrix/config"
	"github.com/Alijeyrad/biomatrix/internal/cohort"
	"github.com/Alijeyrad/biomatrix/internal/model"
	"github.com/Alijeyrad/biomatrix/internal/pull"
	"github.com/Alijeyrad/biomatrix/internal/query"
	"github.com/Alijeyrad/biomatrix/internal/schema"
	"github.com/Alijeyrad/biomatrix/pkg/database"
	"github.com/Alijeyrad/biomatrix/pkg/observability"
	s3pkg "github.com/Alijeyrad/biomatrix/pkg/s3"
)

// DomainModule provides the schema model, the query interpreter and the
// cohort and export services built on it.
var DomainModule = fx.Module("domain",
	fx.Provide(
		schema.NewModel,
		observability.NewQueryObserver,
		ProvideInterpreter,
		cohort.New,
		ProvideSink,
		ProvideExporter,
	),
)

// ProvideInterpreter binds the model once the connector is up. Binding
// failures are not fatal; the model binds on its first query instead.
func ProvideInterpreter(lc fx.Lifecycle, m *model.Model, conn *database.Connector, obs *observability.QueryObserver, log *slog.Logger) *query.Interpreter {
	in := query.New(m, conn, query.WithLogger(log), query.WithObserver(obs))
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !conn.Connected() {
				return nil
			}
			if err := in.Bind(ctx); err != nil {
				log.Warn("schema not bound, binding on first query", "error", err)
			}
			return nil
		},
	})
	return in
}

func ProvideSink(cfg *config.Config, client *s3pkg.Client) pull.Sink {
	if cfg.Export.Sink == "s3" && client != nil {
		return pull.S3Sink{Client: client}
	}
	return pull.DirSink{Dir: cfg.Export.OutputDir}
}

func ProvideExporter(in *query.Interpreter, sink pull.Sink, log *slog.Logger) *pull.Exporter {
	return pull.NewExporter(in, sink, log)
}
