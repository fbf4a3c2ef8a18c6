package dylib

import (
	"sync"

	"go.uber.org/zap"
)

type (
	// SpecialResolver is the last resort lookup, consulted after the registry missed.
	// It runs outside the registry lock and may call back into the registry.
	SpecialResolver func(name string) Sym
	// Option configures a Registry created by New.
	Option func(r *Registry)
	// Registry remembers every library it opened and resolves symbols across them.
	//
	// Lookup order of Resolve:
	//
	//	1. explicit symbols added by AddSymbol
	//	2. the libraries and the process scope, as the SearchOrdering decides
	//	3. the SpecialResolver
	//
	// A single lock serializes every operation but SymbolIn and the SpecialResolver call,
	// native loader calls included.
	Registry struct {
		mu      sync.Locker
		loader  Loader
		symbols symbols
		handles handleSet
		order   SearchOrdering
		special SpecialResolver
		log     *zap.Logger
	}
)

// WithLoader replaces the SystemLoader.
func WithLoader(l Loader) Option {
	return func(r *Registry) { r.loader = l }
}

// WithLocker replaces the default sync.Mutex guarding the registry.
func WithLocker(l sync.Locker) Option {
	return func(r *Registry) { r.mu = l }
}

// WithLogger sets the logger receiving debug traces, the default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithOrdering sets the initial search ordering, an invalid ordering keeps DefaultOrdering.
func WithOrdering(o SearchOrdering) Option {
	return func(r *Registry) {
		if o.Validate() == nil {
			r.order = o
		}
	}
}

// WithSpecialResolver sets the initial last resort lookup.
func WithSpecialResolver(fn SpecialResolver) Option {
	return func(r *Registry) { r.special = fn }
}

// New create a Registry, by default backed by the SystemLoader.
func New(opts ...Option) *Registry {
	r := &Registry{
		symbols: make(symbols),
		order:   DefaultOrdering,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loader == nil {
		r.loader = NewSystemLoader()
	}
	if r.mu == nil {
		r.mu = new(sync.Mutex)
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	r.handles.loader = r.loader
	return r
}

// AddSymbol registers addr under name, replacing any previous value.
func (r *Registry) AddSymbol(name string, addr Sym) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.symbols.set(name, addr)
}

// Load opens path, the empty path being the process scope, and registers the handle.
//
// added reports whether the registry gained a new entry. When the registry refuses a
// non-closable duplicate the opened handle is returned together with ErrAlreadyLoaded;
// it is left open and stays usable.
func (r *Registry) Load(path string, canClose bool) (h Handle, added bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	opened, err := r.loader.Open(path)
	if err != nil {
		return Invalid, false, &LoadError{Path: path, Err: err}
	}
	if opened == Invalid {
		return Invalid, false, &LoadError{Path: path, Err: ErrInvalidHandle}
	}
	h, added, err = r.handles.add(opened, path == "", canClose)
	if err != nil {
		return h, added, err
	}
	if !added && !canClose {
		r.log.Debug("duplicate left open", zap.String("path", path), zap.Stringer("handle", opened))
		return opened, false, ErrAlreadyLoaded
	}
	r.log.Debug("library loaded",
		zap.String("path", path),
		zap.Stringer("handle", h),
		zap.Bool("added", added))
	return h, added, nil
}

// LoadPermanent opens path and keeps it open for the rest of the process.
//
// The empty path opens the process scope. Loading the same library again returns the
// same handle and leaves a single registry entry.
func (r *Registry) LoadPermanent(path string) (Handle, error) {
	h, _, err := r.Load(path, true)
	return h, err
}

// LoadLibraryPermanently is LoadPermanent for callers which only need the error.
func (r *Registry) LoadLibraryPermanently(path string) error {
	_, err := r.LoadPermanent(path)
	return err
}

// AddExistingHandle registers a handle opened outside the registry.
//
// ErrAlreadyLoaded is advisory: the handle is already known and remains registered.
func (r *Registry) AddExistingHandle(h Handle, canClose bool) (Handle, error) {
	if h == Invalid {
		return Invalid, ErrInvalidHandle
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, added, err := r.handles.add(h, false, canClose)
	if err != nil {
		return entry, err
	}
	if !added && !canClose {
		return entry, ErrAlreadyLoaded
	}
	r.log.Debug("handle added", zap.Stringer("handle", entry), zap.Bool("added", added))
	return entry, nil
}

// SymbolIn looks name up in h only.
//
// The handle must still be open, registry membership is not checked.
func (r *Registry) SymbolIn(h Handle, name string) Sym {
	if h == Invalid {
		return 0
	}
	return r.loader.Symbol(h, name)
}

// Resolve returns the address of name, or zero when nothing knows it.
func (r *Registry) Resolve(name string) Sym {
	p, special := r.lookup(name)
	if p != 0 {
		return p
	}
	if special == nil {
		return 0
	}
	return special(name)
}

func (r *Registry) lookup(name string) (Sym, SpecialResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.symbols.get(name); ok {
		return p, nil
	}
	if p := r.handles.lookup(name, r.order); p != 0 {
		return p, nil
	}
	return 0, r.special
}

// SetSearchOrdering changes the lookup policy of Resolve.
func (r *Registry) SetSearchOrdering(o SearchOrdering) error {
	if err := o.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = o
	return nil
}

// SearchOrdering returns the current lookup policy.
func (r *Registry) SearchOrdering() SearchOrdering {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order
}

// SetSpecialResolver sets the last resort lookup, nil removes it.
func (r *Registry) SetSpecialResolver(fn SpecialResolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.special = fn
}

// Contains reports whether h is the process scope or a registered library.
func (r *Registry) Contains(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handles.contains(h)
}

// Libraries returns the registered libraries in load order, the process scope excluded.
func (r *Registry) Libraries() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, _ := r.handles.snapshot()
	return l
}

// Process returns the process scope handle if one is registered.
func (r *Registry) Process() (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handles.process, r.handles.process != Invalid
}

// Symbols returns the explicit symbol names, sorted.
func (r *Registry) Symbols() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.symbols.names()
}

// Close unregisters and closes h. Symbols obtained from h must not be used afterwards.
func (r *Registry) Close(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.handles.remove(h) {
		return ErrNotLoaded
	}
	r.log.Debug("library closed", zap.Stringer("handle", h))
	return r.loader.Close(h)
}

// CloseAll closes every registered library, then the process scope.
//
// Explicit symbols are kept. The registry stays usable afterwards.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log.Debug("closing all libraries", zap.Int("count", len(r.handles.handles)))
	return r.handles.drain()
}
