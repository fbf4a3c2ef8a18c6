// Package dltest provides an in-memory dylib.Loader for tests.
//
// Libraries are declared with Define and behave like reference counted dlopen
// handles: opening an open library hands back the same handle, and the handle is
// retired once every reference was closed. The process scope (empty path) sees its own
// exports plus every open library not marked Local.
package dltest

import (
	"fmt"
	"sync"

	"github.com/ZenLiuCN/dylib"
)

type lib struct {
	path   string
	handle dylib.Handle
	refs   int
	local  bool
	syms   map[string]dylib.Sym
	opened int // order of the first open, for process scope lookups
}

// Loader is a fake native loader, safe for concurrent use.
type Loader struct {
	mu      sync.Mutex
	next    dylib.Handle
	seq     int
	libs    map[string]*lib
	open    map[dylib.Handle]*lib
	fail    map[string]error
	opens   map[string]int
	closes  map[dylib.Handle]int
	lookups int
}

var _ dylib.Loader = (*Loader)(nil)

// NewLoader create an empty Loader, the process scope exports nothing until defined.
func NewLoader() *Loader {
	l := &Loader{
		next:   0x1000,
		libs:   make(map[string]*lib),
		open:   make(map[dylib.Handle]*lib),
		fail:   make(map[string]error),
		opens:  make(map[string]int),
		closes: make(map[dylib.Handle]int),
	}
	l.libs[""] = &lib{syms: make(map[string]dylib.Sym)}
	return l
}

// Define declares the library at path and its exports, the empty path defines the main program.
func (l *Loader) Define(path string, syms map[string]dylib.Sym) *Loader {
	l.mu.Lock()
	defer l.mu.Unlock()
	x, ok := l.libs[path]
	if !ok {
		x = &lib{path: path, syms: make(map[string]dylib.Sym)}
		l.libs[path] = x
	}
	for k, v := range syms {
		x.syms[k] = v
	}
	return l
}

// Local hides the library at path from process scope lookups, as RTLD_LOCAL does.
func (l *Loader) Local(path string) *Loader {
	l.mu.Lock()
	defer l.mu.Unlock()
	if x, ok := l.libs[path]; ok {
		x.local = true
	}
	return l
}

// Fail makes every Open of path return err.
func (l *Loader) Fail(path string, err error) *Loader {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fail[path] = err
	return l
}

func (l *Loader) Open(path string) (dylib.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.fail[path]; err != nil {
		return dylib.Invalid, err
	}
	x, ok := l.libs[path]
	if !ok {
		return dylib.Invalid, dylib.Error(fmt.Sprintf("%s: cannot open shared object file: No such file or directory", path))
	}
	l.opens[path]++
	if x.refs == 0 {
		x.handle = l.next
		l.next += 0x10
		l.seq++
		x.opened = l.seq
		l.open[x.handle] = x
	}
	x.refs++
	return x.handle, nil
}

func (l *Loader) Close(h dylib.Handle) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	x, ok := l.open[h]
	if !ok {
		return dylib.Error(fmt.Sprintf("close %s: invalid handle", h))
	}
	l.closes[h]++
	x.refs--
	if x.refs == 0 {
		delete(l.open, h)
	}
	return nil
}

func (l *Loader) Symbol(h dylib.Handle, name string) dylib.Sym {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lookups++
	x, ok := l.open[h]
	if !ok {
		return 0
	}
	if p := x.syms[name]; p != 0 {
		return p
	}
	if x.path != "" {
		return 0
	}
	var found *lib
	for _, o := range l.open {
		if o.path == "" || o.local || o.syms[name] == 0 {
			continue
		}
		if found == nil || o.opened < found.opened {
			found = o
		}
	}
	if found == nil {
		return 0
	}
	return found.syms[name]
}

// Handle returns the handle path is open with, or Invalid.
func (l *Loader) Handle(path string) dylib.Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	if x, ok := l.libs[path]; ok && x.refs > 0 {
		return x.handle
	}
	return dylib.Invalid
}

// Refs returns the number of open references on path.
func (l *Loader) Refs(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if x, ok := l.libs[path]; ok {
		return x.refs
	}
	return 0
}

// Opens returns the number of successful Open calls for path.
func (l *Loader) Opens(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opens[path]
}

// Closes returns the number of Close calls received for h.
func (l *Loader) Closes(h dylib.Handle) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closes[h]
}

// Lookups returns the number of Symbol calls.
func (l *Loader) Lookups() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookups
}
