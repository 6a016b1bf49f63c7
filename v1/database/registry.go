package database

import (
	"context"
	"strings"
	"sync"
)

// Provider describes an engine that can be registered with a Registry.
// Engine is called lazily, on the first resolution of one of Schemes; wrap
// constructors with Singleton so exactly one instance is ever built.
type Provider struct {
	Name    string
	Schemes []string
	Engine  func() Engine
}

// Registry maps URI schemes to engines.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	schemes   map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		schemes: make(map[string]int),
	}
}

// Register adds a provider. A scheme that is already registered is taken
// over by the new provider.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers = append(r.providers, p)
	idx := len(r.providers) - 1
	for _, scheme := range p.Schemes {
		r.schemes[strings.ToLower(scheme)] = idx
	}
}

// SchemeExists reports whether an engine answers to scheme.
func (r *Registry) SchemeExists(scheme string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.schemes[strings.ToLower(scheme)]
	return ok
}

// Schemes returns the registered schemes in registration order.
func (r *Registry) Schemes() []string {
	var out []string
	_ = r.ForEachScheme(func(scheme string) error {
		out = append(out, scheme)
		return nil
	})
	return out
}

// ForEachScheme calls fn for every registered scheme, in registration
// order, stopping at the first error fn returns.
func (r *Registry) ForEachScheme(fn func(scheme string) error) error {
	r.mu.RLock()
	var schemes []string
	for idx, p := range r.providers {
		for _, scheme := range p.Schemes {
			if r.schemes[strings.ToLower(scheme)] == idx {
				schemes = append(schemes, strings.ToLower(scheme))
			}
		}
	}
	r.mu.RUnlock()

	for _, scheme := range schemes {
		if err := fn(scheme); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns the engine owning the URI's scheme.
func (r *Registry) Resolve(uri *URI) (Engine, error) {
	if uri == nil || uri.Scheme == "" {
		return nil, NewError(KindInvalidURI, StateInvalidURI, "connection URI has no scheme")
	}

	r.mu.RLock()
	idx, ok := r.schemes[strings.ToLower(uri.Scheme)]
	var getter func() Engine
	if ok {
		getter = r.providers[idx].Engine
	}
	r.mu.RUnlock()

	if !ok || getter == nil {
		return nil, NewError(KindUnsupportedScheme, StateUnsupportedScheme,
			"The specified URI scheme is not supported by any client engine")
	}
	engine := getter()
	if engine == nil {
		return nil, Errorf(KindConnectionFailure, StateUnsupportedScheme,
			"engine for scheme %q could not be initialised", uri.Scheme)
	}
	return engine, nil
}

// ResolveString parses raw and resolves its engine.
func (r *Registry) ResolveString(raw string) (Engine, *URI, error) {
	uri, err := ParseURI(raw)
	if err != nil {
		return nil, nil, err
	}
	engine, err := r.Resolve(uri)
	if err != nil {
		return nil, nil, err
	}
	return engine, uri, nil
}

// Connect resolves the engine for raw, creates a Connection, applies opts
// and connects it. The returned Connection holds one reference, dropped
// with Disconnect.
func (r *Registry) Connect(ctx context.Context, raw string, opts ...Option) (Connection, error) {
	engine, uri, err := r.ResolveString(raw)
	if err != nil {
		return nil, err
	}

	conn := engine.Create()
	for _, opt := range opts {
		opt(conn)
	}
	if err := conn.Connect(ctx, uri); err != nil {
		_ = conn.Disconnect()
		return nil, err
	}
	return conn, nil
}

// Singleton wraps an engine constructor so it runs at most once, however
// many goroutines race on first use.
func Singleton(fn func() Engine) func() Engine {
	return sync.OnceValue(fn)
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry that engine packages
// register themselves with from their init functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds p to the default registry.
func Register(p Provider) {
	defaultRegistry.Register(p)
}

// SchemeExists reports whether the default registry knows scheme.
func SchemeExists(scheme string) bool {
	return defaultRegistry.SchemeExists(scheme)
}

// ForEachScheme iterates the default registry's schemes.
func ForEachScheme(fn func(scheme string) error) error {
	return defaultRegistry.ForEachScheme(fn)
}

// Resolve resolves a URI against the default registry.
func Resolve(uri *URI) (Engine, error) {
	return defaultRegistry.Resolve(uri)
}

// Connect opens a Connection through the default registry.
func Connect(ctx context.Context, raw string, opts ...Option) (Connection, error) {
	return defaultRegistry.Connect(ctx, raw, opts...)
}

// Option configures a Connection before it connects.
type Option func(conn Connection)

// WithLogger attaches a structured logger.
func WithLogger(logger Logger) Option {
	return func(conn Connection) { conn.SetLogger(logger) }
}

// WithObserver attaches an observer for query and transaction events.
func WithObserver(observer Observer) Option {
	return func(conn Connection) { conn.SetObserver(observer) }
}

// WithQueryLog sets the query log callback.
func WithQueryLog(fn QueryLog) Option {
	return func(conn Connection) { conn.SetQueryLog(fn) }
}

// WithErrorLog sets the error log callback.
func WithErrorLog(fn ErrorLog) Option {
	return func(conn Connection) { conn.SetErrorLog(fn) }
}

// WithNoticeLog sets the notice log callback.
func WithNoticeLog(fn NoticeLog) Option {
	return func(conn Connection) { conn.SetNoticeLog(fn) }
}

// WithUserData attaches caller data to the connection.
func WithUserData(data interface{}) Option {
	return func(conn Connection) { conn.SetUserData(data) }
}
