package postgres

import (
	"context"
	"slices"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// FXModule is an fx module that provides a PostgreSQL connection built
// from a database.Config. It provides the concrete *Conn as well as the
// database.Connection interface, and registers the same lifecycle hooks
// as database.FXModule, which it replaces; do not use both.
//
//	app := fx.New(
//	    postgres.FXModule,
//	    fx.Provide(func() database.Config {
//	        return database.Config{URI: "pgsql://app@db/inventory", MonitorInterval: 10 * time.Second}
//	    }),
//	)
var FXModule = fx.Module("postgres",
	fx.Provide(
		NewConnWithDI,
		fx.Annotate(
			ProvideConnection,
			fx.As(new(database.Connection)),
		),
	),
	fx.Invoke(database.RegisterConnectionLifecycle),
)

// ProvideConnection exposes the concrete *Conn as database.Connection.
func ProvideConnection(c *Conn) *Conn {
	return c
}

// ConnParams groups the dependencies needed to create a *Conn via
// dependency injection.
type ConnParams struct {
	fx.In

	Config    database.Config
	Logger    database.Logger     `optional:"true"`
	Observer  database.Observer   `optional:"true"`
	Observers []database.Observer `group:"sql_observers"`
}

// NewConnWithDI connects to the server named by params.Config.URI, which
// must use one of Schemes.
func NewConnWithDI(params ConnParams) (*Conn, error) {
	uri, err := database.ParseURI(params.Config.URI)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(Schemes, uri.Scheme) {
		return nil, database.Errorf(database.KindUnsupportedScheme, database.StateUnsupportedScheme,
			"scheme %q is not served by the %s engine", uri.Scheme, Name)
	}

	c := New()
	if params.Logger != nil {
		c.SetLogger(params.Logger)
	}
	if o := database.Observers(append(params.Observers, params.Observer)...); o != nil {
		c.SetObserver(o)
	}
	if err := c.Connect(context.Background(), uri); err != nil {
		_ = c.Disconnect()
		return nil, err
	}
	return c, nil
}
