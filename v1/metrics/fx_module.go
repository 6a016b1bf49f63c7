package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// FXModule provides *Metrics, adds it to the "sql_observers" value group so
// connections built by database.FXModule or an engine module report to
// it, and serves /metrics for the application's lifetime.
//
//	app := fx.New(
//	    metrics.FXModule,
//	    database.FXModule,
//	    fx.Provide(func() metrics.Config {
//	        return metrics.Config{Address: ":9090", ServiceName: "inventory"}
//	    }),
//	    // database.Config, engines...
//	)
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		fx.Annotate(
			func(m *Metrics) database.Observer { return m },
			fx.ResultTags(`group:"sql_observers"`),
		),
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// LifecycleParams groups the dependencies of RegisterMetricsLifecycle.
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Metrics   *Metrics
	Logger    database.Logger `optional:"true"`
}

// RegisterMetricsLifecycle binds the metrics listener on start, serves it
// in the background and shuts the server down on stop. A listen failure
// fails the start.
func RegisterMetricsLifecycle(params LifecycleParams) {
	m, log := params.Metrics, params.Logger
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", m.Server.Addr)
			if err != nil {
				return err
			}
			if log != nil {
				log.Info("Starting Prometheus metrics server", nil, map[string]interface{}{
					"address": ln.Addr().String(),
				})
			}
			go func() {
				if err := m.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && log != nil {
					log.Error("Error serving Prometheus metrics", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if log != nil {
				log.Info("Shutting down Prometheus metrics server", nil, nil)
			}
			return m.Server.Shutdown(ctx)
		},
	})
}
