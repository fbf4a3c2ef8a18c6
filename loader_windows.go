//go:build windows

package dylib

import (
	"golang.org/x/sys/windows"
)

const (
	RTLD_LAZY   = 0
	RTLD_NOW    = 0
	RTLD_GLOBAL = 0
	RTLD_LOCAL  = 0
)

// Open calls LoadLibrary, the empty path takes a reference on the executable module.
func (l *SystemLoader) Open(path string) (Handle, error) {
	if path == "" {
		var h windows.Handle
		if err := windows.GetModuleHandleEx(0, nil, &h); err != nil {
			return Invalid, Error(err.Error())
		}
		return Handle(h), nil
	}
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return Invalid, Error(err.Error())
	}
	return Handle(h), nil
}

func (l *SystemLoader) Close(h Handle) error {
	if h == Invalid {
		return nil
	}
	if err := windows.FreeLibrary(windows.Handle(h)); err != nil {
		return Error(err.Error())
	}
	return nil
}

// Symbol calls GetProcAddress. For the process scope only the executable itself is searched.
func (l *SystemLoader) Symbol(h Handle, name string) Sym {
	if h == Invalid {
		return 0
	}
	p, err := windows.GetProcAddress(windows.Handle(h), name)
	if err != nil {
		return 0
	}
	return Sym(p)
}
