package logger

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// FXModule provides *Logger built from a logger.Config, and the same value
// as database.Logger so that database.FXModule and the engine modules pick
// it up.
//
//	app := fx.New(
//	    logger.FXModule,
//	    database.FXModule,
//	    fx.Provide(func() logger.Config { return logger.Config{Level: logger.Info} }),
//	    fx.Provide(func() database.Config { return database.Config{URI: "sqlite:///var/lib/app/state.db"} }),
//	)
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		fx.Annotate(
			func(l *Logger) *Logger { return l },
			fx.As(new(database.Logger)),
		),
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle flushes buffered entries when the application
// stops.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// syncing a terminal stderr fails with EINVAL on Linux
			_ = client.Zap.Sync()
			return nil
		},
	})
}
