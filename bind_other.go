//go:build !(darwin || freebsd || linux || windows)

package dylib

import "fmt"

// Bind is not implemented on this platform.
func Bind[T any](sym Sym, fptr *T) error {
	if sym == 0 {
		return ErrMissingSymbol
	}
	return errNotImplemented
}

// Use create a function to resolve and bind a symbol on the fly
func Use[T any](r *Registry, name string) func(func(t T, err error)) {
	return func(f func(t T, err error)) {
		var x T
		f(x, fmt.Errorf("bind %s: %w", name, Bind(r.Resolve(name), &x)))
	}
}
