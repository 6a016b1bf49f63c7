package tracer

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// FXModule provides *Tracer, adds it to the "sql_observers" value group so
// the connection modules trace their statements, and shuts the provider
// down on stop.
//
//	app := fx.New(
//	    tracer.FXModule,
//	    database.FXModule,
//	    fx.Provide(func() tracer.Config {
//	        return tracer.Config{ServiceName: "inventory", EnableExport: true}
//	    }),
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(t *Tracer) database.Observer { return t },
			fx.ResultTags(`group:"sql_observers"`),
		),
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// TracerParams groups the dependencies of NewClientWithDI.
type TracerParams struct {
	fx.In

	Config Config
	Logger database.Logger `optional:"true"`
}

// NewClientWithDI builds the Tracer from injected dependencies.
func NewClientWithDI(params TracerParams) *Tracer {
	return NewClient(params.Config, params.Logger)
}

// RegisterTracerLifecycle flushes and stops the tracer provider when the
// application stops.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if tracer.logger != nil {
				tracer.logger.Info("shutting down tracer", nil, nil)
			}
			return tracer.Shutdown(ctx)
		},
	})
}
