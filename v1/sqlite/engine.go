package sqlite

import "github.com/Aleph-Alpha/sqlstd/v1/database"

// Name is the engine name.
const Name = "sqlite"

// Schemes lists the URI schemes served by this engine.
var Schemes = []string{"sqlite", "sqlite3", "file", "sqlite3+file"}

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
