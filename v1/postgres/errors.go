package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// Server SQLSTATEs reported as lock conflicts.
const (
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// translate keeps the server's SQLSTATE and message. Serialization
// failures and deadlocks become KindDeadlock; failures to reach the
// server become KindConnectionFailure.
func translate(err error) *database.Error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := database.KindEngine
		switch pgErr.Code {
		case serializationFailure, deadlockDetected:
			kind = database.KindDeadlock
		}
		e := database.WrapError(kind, pgErr.Code, 0, err)
		e.Message = pgErr.Message
		return e
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) {
		return database.WrapError(database.KindConnectionFailure, database.StateConnectionFailure, 0, err)
	}
	return database.WrapError(database.KindEngine, database.StateGeneral, 0, err)
}
