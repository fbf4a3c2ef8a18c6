package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZenLiuCN/dylib"
	"github.com/ZenLiuCN/dylib/dltest"
)

func run(t *testing.T, l *dltest.Loader, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = &buf
	app.Metadata = map[string]interface{}{loaderKey: dylib.Loader(l)}
	err := app.Run(append([]string{"dylib"}, args...))
	return buf.String(), err
}

func fakeLoader() *dltest.Loader {
	return dltest.NewLoader().
		Define("", map[string]dylib.Sym{"main_f": 0x10}).
		Define("liba.so", map[string]dylib.Sym{"f": 0x20, "g": 0x21}).
		Define("libb.so", map[string]dylib.Sym{"g": 0x30})
}

func TestResolve(t *testing.T) {
	out, err := run(t, fakeLoader(), "--preload", "liba.so", "--preload", "libb.so", "resolve", "f", "g", "nope")
	require.NoError(t, err)
	assert.Equal(t, "f\t0x20\ng\t0x30\nnope\tnot found\n", out)

	out, err = run(t, fakeLoader(), "-l", "liba.so", "-l", "libb.so", "--order", "load-order", "resolve", "g")
	require.NoError(t, err)
	assert.Equal(t, "g\t0x21\n", out)

	_, err = run(t, fakeLoader(), "resolve")
	assert.ErrorContains(t, err, "missing symbol names")

	_, err = run(t, fakeLoader(), "--order", "sideways", "resolve", "f")
	assert.ErrorIs(t, err, dylib.ErrInvalidOrdering)

	_, err = run(t, fakeLoader(), "--preload", "missing.so", "resolve", "f")
	assert.ErrorIs(t, err, dylib.ErrLoadFailure)
}

func TestLibs(t *testing.T) {
	l := fakeLoader()
	out, err := run(t, l, "--process", "-l", "liba.so", "-l", "libb.so", "-l", "liba.so", "libs")
	require.NoError(t, err)
	assert.Equal(t, "process\t"+l.Handle("").String()+
		"\n0\t"+l.Handle("liba.so").String()+
		"\n1\t"+l.Handle("libb.so").String()+"\n", out)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dylib.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
process = true
preload = ["liba.so"]
[aliases]
alias_f = "f"
`), 0o600))
	out, err := run(t, fakeLoader(), "--config", path, "resolve", "alias_f", "main_f")
	require.NoError(t, err)
	assert.Equal(t, "alias_f\t0x20\nmain_f\t0x10\n", out)
}

func TestDump(t *testing.T) {
	out, err := run(t, fakeLoader(), "-p", "-l", "liba.so", "dump")
	require.NoError(t, err)
	assert.Contains(t, out, "Ordering: (string) (len=20) \"reverse,handles-last\"")
	assert.Contains(t, out, "Libraries: ([]dylib.Handle) (len=1")
}
