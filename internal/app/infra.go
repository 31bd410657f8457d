// Package app wires the BioMatrix components into fx modules shared by the
// HTTP server and the CLI.
package app

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/Alijeyrad/biomatrix/config"
	"github.com/Alijeyrad/biomatrix/pkg/database"
	"github.com/Alijeyrad/biomatrix/pkg/logs"
	"github.com/Alijeyrad/biomatrix/pkg/observability"
	s3pkg "github.com/Alijeyrad/biomatrix/pkg/s3"
)

// InfraModule provides logging, telemetry, the store connector and object
// storage.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideConnector),
	fx.Provide(ProvideS3Client),
)

func ProvideLogger(cfg *config.Config) *slog.Logger {
	l := logs.New(cfg)
	slog.SetDefault(l)
	return l
}

// ProvideOTel returns nil when observability is disabled.
func ProvideOTel(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.Init(context.Background(), cfg.Observability, cfg.Server.Environment)
	if err != nil {
		return nil, err
	}
	log.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideConnector connects to the configured store on start. A store that
// cannot be reached is logged and left unbound: requests then fail with
// database.ErrConnection instead of the process refusing to start.
func ProvideConnector(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) *database.Connector {
	conn := database.NewConnector(database.WithLogger(log))
	params := database.FromCentralConfig(cfg.Database)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := conn.Connect(ctx, params); err != nil {
				log.Warn("store unavailable", "store", params.String(), "error", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Debug("closing store sessions")
			return conn.Close()
		},
	})
	return conn
}

// ProvideS3Client returns nil unless reports are exported to S3.
func ProvideS3Client(cfg *config.Config) (*s3pkg.Client, error) {
	if cfg.Export.Sink != "s3" {
		return nil, nil
	}
	return s3pkg.New(context.Background(), cfg.S3)
}
