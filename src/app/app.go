package app

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/savrasov/HeapDB/src"
	"github.com/savrasov/HeapDB/src/bufferpool"
	"github.com/savrasov/HeapDB/src/pkg/utils"
	"github.com/savrasov/HeapDB/src/storage/engine"
)

// App bundles what every CLI command needs: parsed environment, logger, and
// an engine rooted at the configured data directory.
type App struct {
	Log    src.Logger
	Engine *engine.Engine

	env    envVars
	action func(ctx context.Context, a *App) error
}

var _ Entrypoint = &App{}

func (a *App) Init(ctx context.Context) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}

	a.env = env

	if env.Environment == EnvDev {
		a.Log = utils.Must(zap.NewDevelopment()).Sugar()
	} else {
		a.Log = utils.Must(zap.NewProduction()).Sugar()
	}

	strategy, err := bufferpool.ParseStrategy(env.Strategy)
	if err != nil {
		return err
	}

	fs := afero.NewBasePathFs(afero.NewOsFs(), env.DataDir)

	a.Engine = engine.New(fs, engine.Config{
		PoolCapacity: env.PoolCapacity,
		Strategy:     strategy,
	}, a.Log)

	return nil
}

func (a *App) Run(ctx context.Context) error {
	return a.action(ctx, a)
}

func (a *App) Close() error {
	var err error
	if a.Engine != nil {
		err = a.Engine.Close()
	}

	if a.Log != nil {
		if err != nil {
			a.Log.Error("failed to close engine", zap.Error(err))
		}

		// Sync on stderr loggers fails on some platforms; the flush still
		// happened, so only engine errors are fatal here.
		_ = a.Log.Sync()
	}

	return err
}

// Execute runs one CLI action with the full init/signal/close lifecycle.
func Execute(ctx context.Context, action func(ctx context.Context, a *App) error) error {
	if action == nil {
		return fmt.Errorf("nil action")
	}

	return Run(ctx, &App{action: action})
}
