// Package config reads the TOML description of a registry setup and applies it.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/ZenLiuCN/fn"
	"go.uber.org/multierr"

	"github.com/ZenLiuCN/dylib"
)

// ErrUnresolvedAlias is returned by Apply when an alias target can't be resolved.
var ErrUnresolvedAlias = errors.New("unresolved alias target")

// Config is the file form of a registry setup.
//
//	order   = "reverse,handles-last"
//	process = true
//	preload = ["libm.so.6"]
//
//	[aliases]
//	my_cos = "cos"
type Config struct {
	// Order is a search ordering as accepted by dylib.ParseOrdering.
	Order string `toml:"order"`
	// Process opens the process scope before the preloads.
	Process bool `toml:"process"`
	// Preload lists libraries opened permanently, in load order.
	Preload []string `toml:"preload"`
	// Aliases maps explicit symbol names to the symbol they resolve to.
	Aliases map[string]string `toml:"aliases"`
}

// Load reads the configuration at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a configuration.
func Parse(b []byte) (*Config, error) {
	var c Config
	md, err := toml.Decode(string(b), &c)
	if err != nil {
		return nil, err
	}
	if u := md.Undecoded(); len(u) != 0 {
		return nil, fmt.Errorf("unknown keys: %v", u)
	}
	if _, err = c.Ordering(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Ordering returns the parsed search ordering, DefaultOrdering when unset.
func (c *Config) Ordering() (dylib.SearchOrdering, error) {
	if c.Order == "" {
		return dylib.DefaultOrdering, nil
	}
	return dylib.ParseOrdering(c.Order)
}

// Apply sets the ordering, opens the process scope and the preloads, then registers
// the aliases. Failed preloads don't stop the others and are reported together.
func (c *Config) Apply(r *dylib.Registry) (err error) {
	o, err := c.Ordering()
	if err != nil {
		return err
	}
	if err = r.SetSearchOrdering(o); err != nil {
		return err
	}
	if c.Process {
		if _, e := r.LoadPermanent(""); e != nil {
			err = multierr.Append(err, e)
		}
	}
	for _, p := range c.Preload {
		if _, e := r.LoadPermanent(p); e != nil {
			err = multierr.Append(err, e)
		}
	}
	names := fn.MapKeys(c.Aliases)
	slices.Sort(names)
	for _, name := range names {
		target := c.Aliases[name]
		p := r.Resolve(target)
		if p == 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s -> %s", ErrUnresolvedAlias, name, target))
			continue
		}
		r.AddSymbol(name, p)
	}
	return err
}
