/*
Package hostsym resolves symbols of the running Go executable through [goloader].

The table is meant to be installed as the last resort lookup of a [dylib.Registry]:

	t, err := hostsym.New()
	if err != nil {
		return err
	}
	reg.SetSpecialResolver(t.Resolve)

It covers what the native loader can't see, Go symbols linked statically into the host,
and may be extended with the exports of shared objects or other executables.

[goloader]: https://github.com/pkujhd/goloader
*/
package hostsym

import (
	"slices"
	"strings"
	"sync"

	"github.com/ZenLiuCN/fn"
	"github.com/pkujhd/goloader"

	"github.com/ZenLiuCN/dylib"
)

// Table is a name to address table, safe for concurrent use.
type Table struct {
	mu   sync.RWMutex
	syms map[string]uintptr
}

// New create a Table seeded with the symbols of the running executable.
func New() (*Table, error) {
	t := &Table{syms: make(map[string]uintptr)}
	if err := goloader.RegSymbol(t.syms); err != nil {
		return nil, err
	}
	return t, nil
}

// FromMap create a Table from an existing name to address map, which is copied.
func FromMap(m map[string]uintptr) *Table {
	t := &Table{syms: make(map[string]uintptr, len(m))}
	for k, v := range m {
		t.syms[k] = v
	}
	return t
}

// AddSharedObject adds the exports of the shared object at path.
func (t *Table) AddSharedObject(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return goloader.RegSymbolWithSo(t.syms, path)
}

// AddExecutable adds the symbols of the executable at path.
func (t *Table) AddExecutable(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return goloader.RegSymbolWithPath(t.syms, path)
}

// AddTypes registers the type descriptors of the given values.
func (t *Table) AddTypes(types ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	goloader.RegTypes(t.syms, types...)
}

// Resolve looks name up, unqualified names are retried in package main.
func (t *Table) Resolve(name string) dylib.Sym {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if p, ok := t.syms[name]; ok {
		return dylib.Sym(p)
	}
	if strings.IndexByte(name, '.') < 0 {
		if p, ok := t.syms["main."+name]; ok {
			return dylib.Sym(p)
		}
	}
	return 0
}

// Names returns the known names starting with prefix, sorted.
func (t *Table) Names(prefix string) []string {
	t.mu.RLock()
	n := fn.MapKeys(t.syms)
	t.mu.RUnlock()
	if prefix != "" {
		n = slices.DeleteFunc(n, func(s string) bool { return !strings.HasPrefix(s, prefix) })
	}
	slices.Sort(n)
	return n
}

// Len returns the number of known symbols.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.syms)
}
