package dylib

import "errors"

// Loader is the native primitive set the registry is built on.
//
// Calls may block on the platform loader and are made while the registry lock is held.
type Loader interface {
	// Open opens the library at path, an empty path opens the whole process scope.
	Open(path string) (Handle, error)
	// Close releases one reference on h.
	Close(h Handle) error
	// Symbol returns the address of name in h, or zero when h does not export it.
	Symbol(h Handle, name string) Sym
}

// Error is a native loader diagnostic.
type Error string

func (e Error) Error() string { return string(e) }

var errNotImplemented = errors.New("not implemented")

// SystemLoader opens libraries with the platform loader.
//
// Mode holds the dlopen flags on unix and is ignored elsewhere; zero means
// RTLD_NOW|RTLD_GLOBAL.
type SystemLoader struct {
	Mode int
}

// NewSystemLoader create a SystemLoader using the default mode.
func NewSystemLoader() *SystemLoader {
	return &SystemLoader{}
}

var _ Loader = (*SystemLoader)(nil)
