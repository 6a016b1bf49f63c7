package mariadb

import (
	"database/sql/driver"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// Server error numbers reported as lock conflicts.
const (
	errLockWaitTimeout        = 1205
	errLockDeadlock           = 1213
	errWarnNDBTimeout         = 1478
	errWarnNDBUnknownDeadlock = 1479
)

// translate keeps the server's SQLSTATE, message and error number. Lock
// conflicts become KindDeadlock.
func translate(err error) *database.Error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		kind := database.KindEngine
		switch myErr.Number {
		case errLockWaitTimeout, errLockDeadlock, errWarnNDBTimeout, errWarnNDBUnknownDeadlock:
			kind = database.KindDeadlock
		}
		state := string(myErr.SQLState[:])
		if myErr.SQLState == [5]byte{} {
			state = database.StateGeneral
		}
		e := database.WrapError(kind, state, int(myErr.Number), err)
		e.Message = myErr.Message
		return e
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return database.WrapError(database.KindConnectionFailure, database.StateConnectionFailure, 0, err)
	}
	return database.WrapError(database.KindEngine, database.StateGeneral, 0, err)
}
