//go:build !(darwin || freebsd || linux || windows)

package dylib

const (
	RTLD_LAZY   = 0
	RTLD_NOW    = 0
	RTLD_GLOBAL = 0
	RTLD_LOCAL  = 0
)

// Open is not implemented on this platform.
func (l *SystemLoader) Open(path string) (Handle, error) {
	return Invalid, errNotImplemented
}

// Close is not implemented on this platform.
func (l *SystemLoader) Close(h Handle) error {
	return errNotImplemented
}

// Symbol is not implemented on this platform.
func (l *SystemLoader) Symbol(h Handle, name string) Sym {
	return 0
}
