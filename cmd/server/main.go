// Command server runs the image storage HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/imagevault/imagevault/internal/boot"
	"github.com/imagevault/imagevault/internal/config"
	"github.com/imagevault/imagevault/internal/handlers"
	"github.com/imagevault/imagevault/internal/logger"
	"github.com/imagevault/imagevault/internal/server"
	"github.com/imagevault/imagevault/internal/storage"
	"github.com/imagevault/imagevault/internal/version"
)

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideAdapter(log *slog.Logger, runtimeConfig *boot.RuntimeConfig) (*storage.LocalAdapter, error) {
	return storage.NewLocal(log, storage.LocalConfig{
		Root:      runtimeConfig.StorageRoot,
		URLSubdir: runtimeConfig.URLSubdir,
	})
}

type serverParams struct {
	fx.In

	Logger        *slog.Logger
	RuntimeConfig *boot.RuntimeConfig
	Handlers      []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.RuntimeConfig.ServerAddr, params.RuntimeConfig.MaxUpload, params.Handlers...)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting imagevault %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}

func main() {
	fx.New(
		fx.Provide(
			provideConfig,
			boot.ProvideRuntimeConfig,
			provideLogger,

			fx.Annotate(provideAdapter, fx.As(new(storage.Adapter))),

			fx.Annotate(handlers.NewPingHandler,
				fx.As(new(server.Handler)),
				fx.ResultTags(`group:"server_handlers"`),
			),
			fx.Annotate(handlers.NewImagesHandler,
				fx.As(new(server.Handler)),
				fx.ResultTags(`group:"server_handlers"`),
			),

			provideServer,
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),
		fx.Invoke(startServer),
	).Run()
}
