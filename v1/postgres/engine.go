package postgres

import "github.com/Aleph-Alpha/sqlstd/v1/database"

// Name is the engine name.
const Name = "postgres"

// Schemes lists the URI schemes served by this engine.
var Schemes = []string{"pgsql", "postgresql", "postgres"}

// DefaultPort is used when the URI carries none.
const DefaultPort = "5432"

func init() {
	database.Register(database.Provider{
		Name:    Name,
		Schemes: Schemes,
		Engine:  database.Singleton(func() database.Engine { return engine{} }),
	})
}

type engine struct{}

func (engine) Name() string      { return Name }
func (engine) Schemes() []string { return Schemes }

func (engine) Create() database.Connection {
	return New()
}
