package database

import (
	"context"
	"sync"

	"go.uber.org/fx"
)

// FXModule provides a database.Connection built from Config through the
// default registry, and releases it when the application stops.
//
// The engines themselves are not linked in by this package. Import the
// ones the application needs, or all of them through v1/engines:
//
//	import _ "github.com/Aleph-Alpha/sqlstd/v1/engines"
//
//	app := fx.New(
//	    database.FXModule,
//	    fx.Provide(func() database.Config {
//	        return database.Config{URI: "pgsql://app@db/inventory"}
//	    }),
//	    fx.Invoke(func(conn database.Connection) {
//	        // use conn
//	    }),
//	)
//
// A Logger present in the container is attached to the connection, as are
// an Observer and every observer in the "sql_observers" group.
var FXModule = fx.Module("database",
	fx.Provide(
		NewConnectionWithDI,
	),
	fx.Invoke(RegisterConnectionLifecycle),
)

// ConnectionParams groups the dependencies needed to open a Connection.
type ConnectionParams struct {
	fx.In

	Config    Config
	Logger    Logger     `optional:"true"`
	Observer  Observer   `optional:"true"`
	Observers []Observer `group:"sql_observers"`
	Registry  *Registry  `optional:"true"`
}

// NewConnectionWithDI opens the connection described by params.Config.
func NewConnectionWithDI(params ConnectionParams) (Connection, error) {
	registry := params.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	var opts []Option
	if params.Logger != nil {
		opts = append(opts, WithLogger(params.Logger))
	}
	if o := Observers(append(params.Observers, params.Observer)...); o != nil {
		opts = append(opts, WithObserver(o))
	}

	conn, err := registry.Connect(context.Background(), params.Config.URI, opts...)
	if err != nil {
		if params.Logger != nil {
			params.Logger.Error("cannot open database connection", err, map[string]interface{}{
				"sqlstate": SQLStateOf(err),
			})
		}
		return nil, err
	}
	return conn, nil
}

// LifecycleParams groups the dependencies needed to manage a Connection
// within an fx application.
type LifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Connection Connection
	Config     Config
}

// RegisterConnectionLifecycle starts Monitor when Config.MonitorInterval
// is set and, on stop, drops the application's reference to the
// connection, closing the link when nothing else holds it.
func RegisterConnectionLifecycle(params LifecycleParams) {
	var (
		wg     sync.WaitGroup
		cancel context.CancelFunc = func() {}
	)
	conn := params.Connection

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if params.Config.MonitorInterval <= 0 {
				return nil
			}
			var monitorCtx context.Context
			monitorCtx, cancel = context.WithCancel(context.Background())
			wg.Add(1)
			go func() {
				defer wg.Done()
				Monitor(monitorCtx, conn, params.Config.MonitorInterval)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			wg.Wait()

			conn.Lock()
			defer conn.Unlock()
			return conn.Disconnect()
		},
	})
}
