package sqlite

import (
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// Gorm returns a gorm handle sharing the connection's dedicated database
// connection. Statements issued through it run inside any transaction
// opened with Begin. The handle is discarded when the link is replaced or
// closed.
func (c *Conn) Gorm() (*gorm.DB, error) {
	l, ok := c.Link().(*link)
	if !ok {
		return nil, c.RecordError(database.NewError(database.KindNotConnected, database.StateNotConnected,
			"connection is not established"))
	}
	if l.orm != nil {
		return l.orm, nil
	}
	orm, err := gorm.Open(&gormsqlite.Dialector{Conn: l.conn}, &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, c.RecordError(err)
	}
	l.orm = orm
	return orm, nil
}
