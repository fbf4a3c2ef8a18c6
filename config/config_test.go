package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZenLiuCN/dylib"
	"github.com/ZenLiuCN/dylib/dltest"
)

const sample = `
order   = "load-order,handles-first"
process = true
preload = ["liba.so", "libb.so"]

[aliases]
my_cos = "cos"
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dylib.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Order:   "load-order,handles-first",
		Process: true,
		Preload: []string{"liba.so", "libb.so"},
		Aliases: map[string]string{"my_cos": "cos"},
	}, c)
	o, err := c.Ordering()
	require.NoError(t, err)
	assert.Equal(t, dylib.SearchOrdering{Direction: dylib.LoadOrder, Precedence: dylib.HandlesFirst}, o)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`order = "sideways"`))
	assert.ErrorIs(t, err, dylib.ErrInvalidOrdering)
	_, err = Parse([]byte(`preloads = ["x"]`))
	assert.ErrorContains(t, err, "unknown keys")
	_, err = Parse([]byte(`order = `))
	assert.Error(t, err)

	c, err := Parse(nil)
	require.NoError(t, err)
	o, err := c.Ordering()
	require.NoError(t, err)
	assert.Equal(t, dylib.DefaultOrdering, o)
}

func TestApply(t *testing.T) {
	l := dltest.NewLoader().
		Define("liba.so", map[string]dylib.Sym{"cos": 0x1}).
		Define("libb.so", map[string]dylib.Sym{"cos": 0x2})
	r := dylib.New(dylib.WithLoader(l))
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, c.Apply(r))

	assert.Equal(t, dylib.SearchOrdering{Direction: dylib.LoadOrder, Precedence: dylib.HandlesFirst}, r.SearchOrdering())
	_, ok := r.Process()
	assert.True(t, ok)
	assert.Len(t, r.Libraries(), 2)
	assert.Equal(t, []string{"my_cos"}, r.Symbols())
	assert.Equal(t, dylib.Sym(0x1), r.Resolve("my_cos"), "load order with handles first picks liba")
}

func TestApplyCollectsErrors(t *testing.T) {
	l := dltest.NewLoader().Define("libb.so", map[string]dylib.Sym{"sin": 0x2})
	r := dylib.New(dylib.WithLoader(l))
	c := &Config{
		Preload: []string{"liba.so", "libb.so", "libc.so"},
		Aliases: map[string]string{"my_sin": "sin", "my_tan": "tan"},
	}
	err := c.Apply(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, dylib.ErrLoadFailure)
	assert.ErrorIs(t, err, ErrUnresolvedAlias)
	assert.Contains(t, err.Error(), "liba.so")
	assert.Contains(t, err.Error(), "libc.so")
	assert.Contains(t, err.Error(), "my_tan -> tan")
	assert.Len(t, r.Libraries(), 1, "failures don't stop the other preloads")
	assert.Equal(t, dylib.Sym(0x2), r.Resolve("my_sin"))
}
