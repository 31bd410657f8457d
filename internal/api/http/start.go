package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Alijeyrad/biomatrix/config"
	"github.com/Alijeyrad/biomatrix/internal/api/http/router"
	"github.com/Alijeyrad/biomatrix/internal/app"
)

// Start runs the HTTP API until the process is signalled to stop.
func Start(cfg *config.Config, timeout time.Duration) {
	fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.DomainModule,
		router.Module,
		Module,
		fx.Invoke(func(*fiber.App) {}),
		fx.StopTimeout(timeout),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	).Run()
}
