package dylib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZenLiuCN/dylib"
)

func TestDefaultRegistry(t *testing.T) {
	r := dylib.Default()
	assert.Same(t, r, dylib.Default())

	dylib.AddSymbol("dylib_test_explicit", 0x1234)
	assert.Equal(t, dylib.Sym(0x1234), dylib.ResolveSymbol("dylib_test_explicit"))
	assert.Contains(t, r.Symbols(), "dylib_test_explicit")

	assert.Equal(t, dylib.Sym(0), dylib.GetAddressOfSymbolIn(dylib.Invalid, "dylib_test_explicit"))
	assert.ErrorIs(t, dylib.SetSearchOrdering(dylib.SearchOrdering{Precedence: 9}), dylib.ErrInvalidOrdering)

	_, err := dylib.AddExistingHandle(dylib.Invalid, true)
	assert.ErrorIs(t, err, dylib.ErrInvalidHandle)
}

func TestDefaultSpecialResolver(t *testing.T) {
	dylib.SetSpecialSymbolResolver(func(name string) dylib.Sym {
		if name == "dylib_test_special" {
			return 0x77
		}
		return 0
	})
	defer dylib.SetSpecialSymbolResolver(nil)
	assert.Equal(t, dylib.Sym(0x77), dylib.ResolveSymbol("dylib_test_special"))
}
