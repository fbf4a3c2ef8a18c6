//go:build darwin || freebsd || linux

package dylib

import (
	"github.com/ebitengine/purego"
)

const (
	RTLD_LAZY   = purego.RTLD_LAZY
	RTLD_NOW    = purego.RTLD_NOW
	RTLD_GLOBAL = purego.RTLD_GLOBAL
	RTLD_LOCAL  = purego.RTLD_LOCAL
)

func (l *SystemLoader) mode() int {
	if l.Mode == 0 {
		return RTLD_NOW | RTLD_GLOBAL
	}
	return l.Mode
}

// Open calls dlopen. The empty path is passed through, which the dynamic linker
// maps to the main program and everything it loaded with global visibility.
func (l *SystemLoader) Open(path string) (Handle, error) {
	h, err := purego.Dlopen(path, l.mode())
	if err != nil {
		return Invalid, Error(err.Error())
	}
	if h == 0 {
		return Invalid, Error("dlopen returned a nil handle")
	}
	return Handle(h), nil
}

func (l *SystemLoader) Close(h Handle) error {
	if h == Invalid {
		return nil
	}
	if err := purego.Dlclose(uintptr(h)); err != nil {
		return Error(err.Error())
	}
	return nil
}

// Symbol calls dlsym, a dlerror is reported as not found.
func (l *SystemLoader) Symbol(h Handle, name string) Sym {
	if h == Invalid {
		return 0
	}
	p, err := purego.Dlsym(uintptr(h), name)
	if err != nil {
		return 0
	}
	return Sym(p)
}
