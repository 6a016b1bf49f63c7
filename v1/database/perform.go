package database

import (
	"context"
	"time"
)

// Outcome is what a transaction body asks Perform to do next.
type Outcome int

const (
	// Commit commits the transaction.
	Commit Outcome = iota

	// Rollback rolls back and reports success.
	Rollback

	// Abort rolls back and reports failure.
	Abort

	// Retry rolls back and runs the body again in a new transaction.
	Retry

	// Fail rolls back; it retries when the connection is deadlocked and
	// aborts otherwise.
	Fail
)

func (o Outcome) String() string {
	switch o {
	case Commit:
		return "commit"
	case Rollback:
		return "rollback"
	case Abort:
		return "abort"
	case Retry:
		return "retry"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// TxFunc is a unit of work run inside a transaction by Perform.
type TxFunc func(ctx context.Context, conn Connection) Outcome

// Perform runs body inside a transaction opened with mode, retrying on
// lock conflicts. At most maxRetries attempts are made; a negative value
// retries without bound and zero makes no attempt at all.
//
// Perform returns nil when the body's work was committed, or rolled back
// at its request, even if that rollback reported an error. A failure to
// begin is returned at once, wrapped in ErrAborted when it was a lock
// conflict. A body that
// aborts, or fails without a lock conflict, yields ErrAborted. A commit
// that fails without a lock conflict returns the commit error. Running out
// of attempts yields ErrRetriesExceeded; raw lock conflicts never escape.
//
// Perform drives conn without locking it. Callers sharing conn between
// goroutines hold its advisory lock for the whole call.
func Perform(ctx context.Context, conn Connection, body TxFunc, maxRetries int, mode TxMode) error {
	start := time.Now()
	attempts, outcome, err := perform(ctx, conn, body, maxRetries, mode)
	observeTransaction(conn, TransactionEvent{
		Context:  ctx,
		Variant:  conn.Variant(),
		Mode:     mode,
		Attempts: attempts,
		Outcome:  outcome,
		Duration: time.Since(start),
		Err:      err,
	})
	return err
}

func perform(ctx context.Context, conn Connection, body TxFunc, maxRetries int, mode TxMode) (int, Outcome, error) {
	attempts := 0
	last := Retry

	for maxRetries < 0 || attempts < maxRetries {
		attempts++
		if err := conn.Begin(ctx, mode); err != nil {
			if IsRetryable(err) {
				return attempts, last, aborted(conn, "transaction could not begin", err)
			}
			return attempts, last, err
		}
		before := conn.LastError()

		last = body(ctx, conn)
		switch last {
		case Rollback:
			// a failed rollback still discards the work
			_ = conn.Rollback(ctx)
			return attempts, last, nil
		case Abort:
			cause := freshError(conn, before)
			_ = conn.Rollback(ctx)
			return attempts, last, aborted(conn, "transaction aborted by its body", cause)
		case Fail:
			if !conn.Deadlocked() {
				cause := freshError(conn, before)
				_ = conn.Rollback(ctx)
				return attempts, last, aborted(conn, "transaction failed", cause)
			}
		case Commit:
			err := conn.Commit(ctx)
			if err == nil {
				return attempts, last, nil
			}
			if !conn.Deadlocked() {
				_ = conn.Rollback(ctx)
				return attempts, last, err
			}
		}

		if err := conn.Rollback(ctx); err != nil {
			return attempts, last, err
		}
	}

	return attempts, last, recordOn(conn, Errorf(KindRetriesExceeded, StateRetriesExceeded,
		"transaction did not complete after %d attempts", attempts))
}

func aborted(conn Connection, message string, cause error) error {
	e := NewError(KindAborted, StateRetriesExceeded, message)
	if cause != nil {
		e.Err = cause
		e.Message = message + ": " + cause.Error()
	}
	return recordOn(conn, e)
}

// freshError returns the connection's last error if it was recorded after
// before, so a stale failure is never reported as the cause.
func freshError(conn Connection, before error) error {
	last := conn.LastError()
	if last == nil || last == before {
		return nil
	}
	return last
}
