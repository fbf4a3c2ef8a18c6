package dltest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZenLiuCN/dylib"
)

func TestReferenceCounting(t *testing.T) {
	l := NewLoader().Define("liba.so", map[string]dylib.Sym{"a": 1})
	h, err := l.Open("liba.so")
	require.NoError(t, err)
	h2, err := l.Open("liba.so")
	require.NoError(t, err)
	assert.Equal(t, h, h2)
	assert.Equal(t, 2, l.Refs("liba.so"))

	require.NoError(t, l.Close(h))
	require.NoError(t, l.Close(h))
	assert.Equal(t, dylib.Invalid, l.Handle("liba.so"))
	assert.Error(t, l.Close(h), "retired handle")
	assert.Equal(t, dylib.Sym(0), l.Symbol(h, "a"))

	h3, err := l.Open("liba.so")
	require.NoError(t, err)
	assert.NotEqual(t, h, h3, "reopen after retirement hands a new value")
	assert.Equal(t, 3, l.Opens("liba.so"))
	assert.Equal(t, 2, l.Closes(h))
}

func TestProcessScopeVisibility(t *testing.T) {
	l := NewLoader().
		Define("", map[string]dylib.Sym{"main": 1}).
		Define("liba.so", map[string]dylib.Sym{"dup": 2}).
		Define("libb.so", map[string]dylib.Sym{"dup": 3, "b": 4}).
		Define("libc.so", map[string]dylib.Sym{"c": 5}).
		Local("libc.so")
	p, err := l.Open("")
	require.NoError(t, err)
	for _, n := range []string{"libb.so", "liba.so", "libc.so"} {
		_, err = l.Open(n)
		require.NoError(t, err)
	}
	assert.Equal(t, dylib.Sym(1), l.Symbol(p, "main"))
	assert.Equal(t, dylib.Sym(3), l.Symbol(p, "dup"), "first opened global library wins")
	assert.Equal(t, dylib.Sym(4), l.Symbol(p, "b"))
	assert.Equal(t, dylib.Sym(0), l.Symbol(p, "c"), "local library hidden")
	assert.Equal(t, dylib.Sym(5), l.Symbol(l.Handle("libc.so"), "c"))
	assert.Equal(t, 5, l.Lookups())
}

func TestOpenErrors(t *testing.T) {
	l := NewLoader()
	_, err := l.Open("nope.so")
	var de dylib.Error
	assert.ErrorAs(t, err, &de)
	l.Define("x.so", nil).Fail("x.so", dylib.Error("bad ELF header"))
	h, err := l.Open("x.so")
	assert.EqualError(t, err, "bad ELF header")
	assert.Equal(t, dylib.Invalid, h)
	assert.Equal(t, 0, l.Opens("x.so"))
}
