package dylib

import (
	"sync"
)

var (
	global     *Registry
	globalOnce sync.Once
)

// Default returns the process-wide Registry, created on first use with the SystemLoader.
func Default() *Registry {
	globalOnce.Do(func() {
		global = New()
	})
	return global
}

// AddSymbol registers an explicit symbol in the process-wide Registry.
func AddSymbol(name string, addr Sym) {
	Default().AddSymbol(name, addr)
}

// LoadPermanentLibrary opens path, or the process scope when empty, for the rest of the process.
func LoadPermanentLibrary(path string) (Handle, error) {
	return Default().LoadPermanent(path)
}

// LoadLibraryPermanently is LoadPermanentLibrary without the handle.
func LoadLibraryPermanently(path string) error {
	return Default().LoadLibraryPermanently(path)
}

// AddExistingHandle registers a handle opened by the embedding program.
func AddExistingHandle(h Handle, canClose bool) (Handle, error) {
	return Default().AddExistingHandle(h, canClose)
}

// GetAddressOfSymbolIn looks name up in h only.
func GetAddressOfSymbolIn(h Handle, name string) Sym {
	return Default().SymbolIn(h, name)
}

// ResolveSymbol resolves name through the process-wide Registry.
func ResolveSymbol(name string) Sym {
	return Default().Resolve(name)
}

// SetSearchOrdering changes the process-wide lookup policy.
func SetSearchOrdering(o SearchOrdering) error {
	return Default().SetSearchOrdering(o)
}

// SetSpecialSymbolResolver sets the process-wide last resort lookup.
func SetSpecialSymbolResolver(fn SpecialResolver) {
	Default().SetSpecialResolver(fn)
}
