package database

import (
	"context"
	"sync"
)

// fakeLink records every statement and fails those its hook rejects.
type fakeLink struct {
	mu      sync.Mutex
	log     []string
	hook    func(query string) error
	results map[string]*fakePayload
	closed  int
}

func (l *fakeLink) record(query string) error {
	l.mu.Lock()
	l.log = append(l.log, query)
	hook := l.hook
	l.mu.Unlock()
	if hook != nil {
		return hook(query)
	}
	return nil
}

func (l *fakeLink) Exec(ctx context.Context, query string) error {
	return l.record(query)
}

func (l *fakeLink) Query(ctx context.Context, query string) (Payload, error) {
	if err := l.record(query); err != nil {
		return nil, err
	}
	if p, ok := l.results[query]; ok {
		return p.clone(), nil
	}
	return &fakePayload{}, nil
}

func (l *fakeLink) Translate(err error) *Error {
	return WrapError(KindEngine, StateGeneral, 0, err)
}

func (l *fakeLink) BeginStatement(mode TxMode) string {
	if mode == TxConsistent {
		return "BEGIN CONSISTENT"
	}
	return "BEGIN"
}

func (l *fakeLink) Close() error {
	l.closed++
	return nil
}

func (l *fakeLink) statements() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.log))
	copy(out, l.log)
	return out
}

func (l *fakeLink) count(query string) int {
	n := 0
	for _, q := range l.statements() {
		if q == query {
			n++
		}
	}
	return n
}

// fakeConn is a connection on a fakeLink, escaping quotes by doubling them.
type fakeConn struct {
	Base
	link *fakeLink
}

func newFakeConn() *fakeConn {
	c := &fakeConn{link: &fakeLink{results: map[string]*fakePayload{}}}
	c.Init(c, VariantSQLite)
	c.Attach(MustParseURI("fake:///memory"), c.link)
	return c
}

func (c *fakeConn) Connect(ctx context.Context, uri *URI) error {
	if uri.Database() == "unreachable" {
		return c.RecordError(NewError(KindConnectionFailure, StateConnectionFailure, "cannot reach server"))
	}
	if c.Connected() {
		// a reconnect gets a fresh link
		c.link = &fakeLink{results: map[string]*fakePayload{}}
	}
	c.Attach(uri, c.link)
	return nil
}

func (c *fakeConn) Escape(buf, from []byte) int {
	need := len(from)*2 + 1
	if len(buf) < need {
		if len(buf) > 0 {
			buf[0] = 0
		}
		return need
	}
	n := 0
	for _, ch := range from {
		if ch == '\'' {
			buf[n] = '\''
			n++
		}
		buf[n] = ch
		n++
	}
	buf[n] = 0
	return n + 1
}

type fakeEngine struct {
	name    string
	schemes []string
}

func (e *fakeEngine) Name() string      { return e.name }
func (e *fakeEngine) Schemes() []string { return e.schemes }
func (e *fakeEngine) Create() Connection {
	c := &fakeConn{link: &fakeLink{}}
	c.Init(c, VariantSQLite)
	return c
}

// fakePayload is a materialized result of text values; nil means NULL.
type fakePayload struct {
	names    []string
	rows     [][]*string
	affected int64
	cur      int
	closed   bool
}

func str(s string) *string { return &s }

func (p *fakePayload) clone() *fakePayload {
	c := *p
	return &c
}

func (p *fakePayload) Columns() int    { return len(p.names) }
func (p *fakePayload) Rows() int       { return len(p.rows) }
func (p *fakePayload) Affected() int64 { return p.affected }
func (p *fakePayload) Name(col int) string {
	return p.names[col]
}
func (p *fakePayload) Width(col int) int {
	w := 0
	for _, r := range p.rows {
		if r[col] != nil && len(*r[col]) > w {
			w = len(*r[col])
		}
	}
	return w
}
func (p *fakePayload) EOF() bool { return p.cur >= len(p.rows) }
func (p *fakePayload) Next() (bool, error) {
	if p.cur < len(p.rows) {
		p.cur++
	}
	return p.cur < len(p.rows), nil
}
func (p *fakePayload) Cur() int { return p.cur }
func (p *fakePayload) Seek(row int) error {
	if row < 0 || row > len(p.rows) {
		return NewError(KindEngine, StateGeneral, "row out of range")
	}
	p.cur = row
	return nil
}
func (p *fakePayload) Null(col int) bool { return p.rows[p.cur][col] == nil }
func (p *fakePayload) Bytes(col int) []byte {
	v := p.rows[p.cur][col]
	if v == nil {
		return nil
	}
	return []byte(*v)
}
func (p *fakePayload) Close() error {
	p.closed = true
	return nil
}

// recordingObserver keeps every event it receives.
type recordingObserver struct {
	mu           sync.Mutex
	queries      []QueryEvent
	transactions []TransactionEvent
}

func (o *recordingObserver) ObserveQuery(event QueryEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queries = append(o.queries, event)
}

func (o *recordingObserver) ObserveTransaction(event TransactionEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transactions = append(o.transactions, event)
}
