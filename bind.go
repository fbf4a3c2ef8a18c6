//go:build darwin || freebsd || linux || windows

package dylib

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// Bind makes fptr call the native function at sym.
//
// T must be a func type using C compatible parameters, see purego.RegisterFunc.
func Bind[T any](sym Sym, fptr *T) (err error) {
	if sym == 0 {
		return ErrMissingSymbol
	}
	defer func() {
		switch x := recover().(type) {
		case nil:
		case error:
			err = x
		default:
			err = fmt.Errorf("%v", x)
		}
	}()
	purego.RegisterFunc(fptr, uintptr(sym))
	return
}

// Use create a function to resolve and bind a symbol on the fly
func Use[T any](r *Registry, name string) func(func(t T, err error)) {
	return func(f func(t T, err error)) {
		var x T
		err := Bind(r.Resolve(name), &x)
		if err != nil {
			err = fmt.Errorf("bind %s: %w", name, err)
		}
		f(x, err)
	}
}
