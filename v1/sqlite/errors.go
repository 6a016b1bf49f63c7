package sqlite

import (
	"errors"
	"fmt"

	gosqlite "github.com/glebarez/go-sqlite"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// Primary result codes reported as lock conflicts.
const (
	codeBusy   = 5
	codeLocked = 6
)

// translate maps a driver error to a "Znnnn" status code carrying the
// extended result code. Lock conflicts become KindDeadlock.
func translate(err error) *database.Error {
	var se *gosqlite.Error
	if !errors.As(err, &se) {
		return database.WrapError(database.KindEngine, database.StateGeneral, 0, err)
	}
	code := se.Code()
	switch code & 0xff {
	case codeBusy, codeLocked:
		return database.WrapError(database.KindDeadlock, database.StateSerialization, code, err)
	}
	return database.WrapError(database.KindEngine, fmt.Sprintf("Z%04d", code), code, err)
}
