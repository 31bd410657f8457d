package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/Alijeyrad/biomatrix/config"
	"github.com/Alijeyrad/biomatrix/internal/cohort"
	"github.com/Alijeyrad/biomatrix/internal/pull"
	"github.com/Alijeyrad/biomatrix/internal/query"
	"github.com/Alijeyrad/biomatrix/pkg/database"
)

// Deps are the components handed to a one-shot command.
type Deps struct {
	fx.In

	Config      *config.Config
	Log         *slog.Logger
	Conn        *database.Connector
	Interpreter *query.Interpreter
	Cohorts     *cohort.Selector
	Exporter    *pull.Exporter
}

// Exec starts the infra and domain modules, runs fn and stops them again.
func Exec(ctx context.Context, cfg *config.Config, fn func(context.Context, Deps) error) error {
	var d Deps
	a := fx.New(
		fx.Supply(cfg),
		InfraModule,
		DomainModule,
		fx.Populate(&d),
		fx.NopLogger,
	)
	if err := a.Err(); err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}

	runErr := fn(ctx, d)

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Join(runErr, a.Stop(stopCtx))
}
