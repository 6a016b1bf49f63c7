package database

import (
	"context"
	"time"
)

// QueryEvent describes one statement sent to an engine. Context is the
// one the statement ran with.
type QueryEvent struct {
	Context   context.Context
	Variant   Variant
	Statement string
	Duration  time.Duration
	Err       error
}

// TransactionEvent describes one completed Perform call. Context is the
// one passed to Perform.
type TransactionEvent struct {
	Context  context.Context
	Variant  Variant
	Mode     TxMode
	Attempts int
	Outcome  Outcome
	Duration time.Duration
	Err      error
}

// Observer receives query and transaction events from a Connection.
// Implementations must be safe for concurrent use when shared between
// connections.
type Observer interface {
	ObserveQuery(event QueryEvent)
	ObserveTransaction(event TransactionEvent)
}

type multiObserver []Observer

func (m multiObserver) ObserveQuery(event QueryEvent) {
	for _, o := range m {
		o.ObserveQuery(event)
	}
}

func (m multiObserver) ObserveTransaction(event TransactionEvent) {
	for _, o := range m {
		o.ObserveTransaction(event)
	}
}

// Observers fans events out to every non-nil observer given. It returns
// nil when there is none.
func Observers(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

// observeTransaction notifies the connection's observer, if any.
func observeTransaction(conn Connection, event TransactionEvent) {
	src, ok := conn.(interface{ Observer() Observer })
	if !ok {
		return
	}
	if o := src.Observer(); o != nil {
		o.ObserveTransaction(event)
	}
}
