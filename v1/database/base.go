package database

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Link is the engine-specific half of a connection built on Base. Its
// methods report raw driver errors; Base translates and records them.
type Link interface {
	// Exec runs a statement that produces no rows.
	Exec(ctx context.Context, query string) error

	// Query runs a statement and returns its result, positioned on the
	// first row. Statements without a result set yield an empty payload
	// carrying the affected row count.
	Query(ctx context.Context, query string) (Payload, error)

	// Translate maps a driver error to an *Error. Lock conflicts must be
	// reported with KindDeadlock.
	Translate(err error) *Error

	// BeginStatement returns the statement opening a transaction in mode.
	BeginStatement(mode TxMode) string

	Close() error
}

// ErrorRecorder is implemented by connections that keep a last-error
// record. Statements use it to report cursor failures on their connection.
type ErrorRecorder interface {
	RecordError(err error) error
}

// Base carries the state every engine connection shares: the reference
// count, the advisory lock, transaction depth and the deadlock flag, the
// last error, log callbacks, and the scratch buffer used to build schema
// bookkeeping queries. Engine packages embed it and supply a Link once
// connected.
type Base struct {
	refs RefCount
	mu   sync.Mutex

	self    Connection
	link    Link
	uri     *URI
	variant Variant

	depth      int
	deadlocked bool
	lastErr    *Error

	queryLog  QueryLog
	errorLog  ErrorLog
	noticeLog NoticeLog
	logger    Logger
	observer  Observer

	userData interface{}
	scratch  []byte
}

// Init prepares b for use by the connection self, which embeds it.
func (b *Base) Init(self Connection, variant Variant) {
	b.self = self
	b.variant = variant
	b.refs.Init()
}

// Attach installs the engine link after a successful connect to uri. Any
// previous link is closed. The URI is kept for Reconnect.
func (b *Base) Attach(uri *URI, link Link) {
	if b.link != nil && b.link != link {
		_ = b.link.Close()
	}
	b.link = link
	b.uri = uri
	b.lastErr = nil
	b.depth = 0
	b.deadlocked = false
}

// URI returns the URI the connection was last attached with.
func (b *Base) URI() *URI {
	return b.uri
}

// Ping checks that the engine is still reachable. Links that cannot ping
// natively are probed with "SELECT 1".
func (b *Base) Ping(ctx context.Context) error {
	if b.link == nil {
		return b.RecordError(NewError(KindNotConnected, StateNotConnected, "connection is not established"))
	}
	if p, ok := b.link.(interface{ Ping(ctx context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return b.RecordError(b.translate(err))
		}
		return nil
	}
	return b.Execute(ctx, "SELECT 1")
}

// Reconnect connects again with the URI of the last successful Connect.
// It refuses to do so inside a transaction.
func (b *Base) Reconnect(ctx context.Context) error {
	if b.uri == nil {
		return b.RecordError(NewError(KindNotConnected, StateNotConnected, "connection has never been established"))
	}
	if b.depth > 0 {
		return b.RecordError(NewError(KindNestedTransaction, StateNestedTransaction,
			"cannot reconnect while a transaction is open"))
	}
	if err := b.self.Connect(ctx, b.uri); err != nil {
		if b.logger != nil {
			b.logger.Warn("database reconnection failed", err, b.fields())
		}
		return err
	}
	if b.logger != nil {
		b.logger.Info("database connection re-established", nil, b.fields())
	}
	return nil
}

// Link returns the attached engine link, or nil before Connect.
func (b *Base) Link() Link {
	return b.link
}

// Connected reports whether a link is attached.
func (b *Base) Connected() bool {
	return b.link != nil
}

// Retain adds a reference to the connection.
func (b *Base) Retain() Connection {
	if err := b.refs.Retain(); err != nil {
		_ = b.RecordError(err)
	}
	return b.self
}

// Disconnect drops one reference. The engine link is closed when the last
// reference goes.
func (b *Base) Disconnect() error {
	return b.refs.Release(func() error {
		if b.link == nil {
			return nil
		}
		err := b.link.Close()
		b.link = nil
		b.depth = 0
		b.deadlocked = false
		if b.logger != nil {
			b.logger.Debug("database connection closed", err, b.fields())
		}
		return err
	})
}

// Refs returns the number of references held.
func (b *Base) Refs() int32 {
	return b.refs.Count()
}

func (b *Base) Lock() {
	b.mu.Lock()
}

func (b *Base) Unlock() {
	b.mu.Unlock()
}

func (b *Base) TryLock() bool {
	return b.mu.TryLock()
}

// NewStatement creates an empty statement owned by this connection.
func (b *Base) NewStatement(text string) Statement {
	return NewStatement(b.self, text)
}

// Execute runs a statement that produces no rows.
func (b *Base) Execute(ctx context.Context, query string) error {
	_, err := b.run(ctx, query, false)
	return err
}

// Fetch runs a statement and returns its result payload.
func (b *Base) Fetch(ctx context.Context, query string) (Payload, error) {
	return b.run(ctx, query, true)
}

func (b *Base) run(ctx context.Context, query string, rows bool) (Payload, error) {
	if b.link == nil {
		return nil, b.RecordError(NewError(KindNotConnected, StateNotConnected, "connection is not established"))
	}
	if b.depth > 0 && b.deadlocked {
		// nothing can succeed until the transaction is rolled back
		if b.lastErr != nil && b.lastErr.Kind == KindDeadlock {
			return nil, b.lastErr
		}
		return nil, b.RecordError(NewError(KindDeadlock, StateSerialization, "transaction is deadlocked and must be rolled back"))
	}
	b.deadlocked = false

	b.logQuery(query)
	start := time.Now()

	var (
		payload Payload
		err     error
	)
	if rows {
		payload, err = b.link.Query(ctx, query)
	} else {
		err = b.link.Exec(ctx, query)
	}
	if err != nil {
		err = b.RecordError(b.translate(err))
	}
	b.observeQuery(ctx, query, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (b *Base) translate(err error) *Error {
	if e, ok := AsError(err); ok {
		return e
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return WrapError(KindConnectionFailure, StateConnectionFailure, 0, err)
	}
	if b.link != nil {
		if e := b.link.Translate(err); e != nil {
			return e
		}
	}
	return WrapError(KindEngine, StateGeneral, 0, err)
}

// Begin opens a transaction. Transactions do not nest.
func (b *Base) Begin(ctx context.Context, mode TxMode) error {
	if b.link == nil {
		return b.RecordError(NewError(KindNotConnected, StateNotConnected, "connection is not established"))
	}
	if b.depth > 0 {
		return b.RecordError(NewError(KindNestedTransaction, StateNestedTransaction,
			"You are not allowed to execute this command in a transaction"))
	}
	b.deadlocked = false
	if err := b.Execute(ctx, b.link.BeginStatement(mode)); err != nil {
		return err
	}
	b.depth = 1
	return nil
}

// Commit commits the open transaction. It is a no-op outside a
// transaction and fails without contacting the engine while deadlocked.
func (b *Base) Commit(ctx context.Context) error {
	if b.depth == 0 {
		return nil
	}
	if b.deadlocked {
		if b.lastErr != nil && b.lastErr.Kind == KindDeadlock {
			return b.lastErr
		}
		return b.RecordError(NewError(KindDeadlock, StateSerialization, "transaction is deadlocked and cannot be committed"))
	}
	if err := b.Execute(ctx, "COMMIT"); err != nil {
		return err
	}
	b.depth = 0
	return nil
}

// Rollback rolls back the open transaction and clears the deadlock flag.
// The transaction is over afterwards even when ROLLBACK fails. When the
// transaction was deadlocked a failing ROLLBACK is not reported.
func (b *Base) Rollback(ctx context.Context) error {
	if b.depth == 0 {
		return nil
	}
	wasDeadlocked := b.deadlocked
	b.deadlocked = false
	err := b.Execute(ctx, "ROLLBACK")
	b.depth = 0
	b.deadlocked = false
	if err != nil && !wasDeadlocked {
		return err
	}
	return nil
}

// Deadlocked reports whether the engine signalled a lock conflict since
// the last rollback.
func (b *Base) Deadlocked() bool {
	return b.deadlocked
}

// Depth returns the transaction nesting depth, 0 or 1.
func (b *Base) Depth() int {
	return b.depth
}

// RecordError stores err as the connection's last error and reports it to
// the error log and logger. A KindDeadlock error sets the deadlock flag.
// It returns err as an *Error.
func (b *Base) RecordError(err error) error {
	if err == nil {
		return nil
	}
	e, ok := AsError(err)
	if !ok {
		e = b.translate(err)
	}
	b.lastErr = e
	if e.Kind == KindDeadlock {
		b.deadlocked = true
	}
	if b.errorLog != nil {
		b.errorLog(b.self, e.SQLState, e.Message)
	}
	if b.logger != nil {
		fields := b.fields()
		fields["sqlstate"] = e.SQLState
		b.logger.Error("database operation failed", e, fields)
	}
	return e
}

// SQLState returns the status code of the last error, or StateOK.
func (b *Base) SQLState() string {
	if b.lastErr == nil {
		return StateOK
	}
	return b.lastErr.SQLState
}

// ErrorMessage returns the message of the last error, or "".
func (b *Base) ErrorMessage() string {
	if b.lastErr == nil {
		return ""
	}
	return b.lastErr.Message
}

// LastError returns the last recorded error, or nil.
func (b *Base) LastError() error {
	if b.lastErr == nil {
		return nil
	}
	return b.lastErr
}

// Notice delivers a server notice to the notice log and logger.
func (b *Base) Notice(message string) {
	if b.noticeLog != nil {
		b.noticeLog(b.self, message)
	}
	if b.logger != nil {
		fields := b.fields()
		fields["notice"] = message
		b.logger.Info("database notice", nil, fields)
	}
}

func (b *Base) logQuery(query string) {
	if b.queryLog != nil {
		b.queryLog(b.self, query)
	}
	if b.logger != nil {
		fields := b.fields()
		fields["query"] = query
		b.logger.Debug("executing statement", nil, fields)
	}
}

func (b *Base) observeQuery(ctx context.Context, query string, duration time.Duration, err error) {
	if b.observer == nil {
		return
	}
	b.observer.ObserveQuery(QueryEvent{
		Context:   ctx,
		Variant:   b.variant,
		Statement: query,
		Duration:  duration,
		Err:       err,
	})
}

func (b *Base) fields() map[string]interface{} {
	return map[string]interface{}{
		"variant": b.variant.String(),
	}
}

func (b *Base) SetQueryLog(fn QueryLog) {
	b.queryLog = fn
}

func (b *Base) SetErrorLog(fn ErrorLog) {
	b.errorLog = fn
}

func (b *Base) SetNoticeLog(fn NoticeLog) {
	b.noticeLog = fn
}

func (b *Base) SetLogger(logger Logger) {
	b.logger = logger
}

func (b *Base) SetObserver(observer Observer) {
	b.observer = observer
}

// Observer returns the attached observer, or nil.
func (b *Base) Observer() Observer {
	return b.observer
}

func (b *Base) Lang() Lang {
	return LangSQL
}

func (b *Base) Variant() Variant {
	return b.variant
}

func (b *Base) UserData() interface{} {
	return b.userData
}

func (b *Base) SetUserData(data interface{}) {
	b.userData = data
}
