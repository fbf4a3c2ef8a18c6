package dylib

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ZenLiuCN/fn"
)

type (
	//Sym is the address of a resolved symbol, zero means not found.
	Sym uintptr
	//Handle is the opaque identity of an opened native library or of the whole process scope.
	//
	//Handles compare by their underlying bits and are never dereferenced by the registry.
	Handle uintptr
	// symbols is the explicit symbol table, consulted before any library.
	symbols map[string]Sym
)

// Invalid is the handle returned when nothing could be opened, it never equals a real handle.
const Invalid Handle = 0

// Valid reports whether h is a usable handle.
func (h Handle) Valid() bool {
	return h != Invalid
}

func (h Handle) String() string {
	if h == Invalid {
		return "invalid"
	}
	return fmt.Sprintf("%#x", uintptr(h))
}

func (s Sym) String() string {
	return fmt.Sprintf("%#x", uintptr(s))
}

// set overwrites any previous value of name.
func (s symbols) set(name string, addr Sym) {
	s[name] = addr
}

func (s symbols) get(name string) (Sym, bool) {
	v, ok := s[name]
	return v, ok
}

// names dump the registered names in sorted order
func (s symbols) names() []string {
	n := fn.MapKeys(s)
	slices.Sort(n)
	return n
}

var (
	// ErrLoadFailure matches every error returned when the native loader could not open a library.
	ErrLoadFailure = errors.New("library load failure")
	// ErrAlreadyLoaded occurs when a non-closable duplicate registration was refused.
	ErrAlreadyLoaded = errors.New("library already loaded")
	// ErrInvalidOrdering occurs when a search ordering is contradictory or unknown.
	ErrInvalidOrdering = errors.New("invalid search ordering")
	// ErrInvalidHandle occurs when the Invalid handle is registered.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrNotLoaded occurs when closing a handle the registry does not know.
	ErrNotLoaded = errors.New("library not loaded")
	// ErrMissingSymbol occurs when a symbol required for binding can't be found.
	ErrMissingSymbol = errors.New("missing symbol")
)

// LoadError carries the native loader diagnostic of a failed open.
type LoadError struct {
	Path string // empty for the process scope
	Err  error
}

func (e *LoadError) Error() string {
	p := e.Path
	if p == "" {
		p = "<process>"
	}
	return fmt.Sprintf("load %s: %v", p, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes every LoadError match ErrLoadFailure.
func (e *LoadError) Is(target error) bool { return target == ErrLoadFailure }
