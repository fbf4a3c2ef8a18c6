package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ZenLiuCN/dylib"
	"github.com/ZenLiuCN/dylib/config"
	"github.com/ZenLiuCN/dylib/hostsym"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("failure %s", err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "dylib"
	app.Usage = "dynamic library registry inspector"
	app.Description = "open native libraries into a registry and resolve symbols across them"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}},
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "TOML registry configuration"},
		&cli.StringFlag{Name: "order", Aliases: []string{"o"}, Usage: "search ordering, e.g. 'reverse,handles-last'"},
		&cli.BoolFlag{Name: "process", Aliases: []string{"p"}, Usage: "open the process scope"},
		&cli.StringSliceFlag{Name: "preload", Aliases: []string{"l"}, Usage: "library to open permanently, repeatable"},
		&cli.BoolFlag{Name: "host", Usage: "fall back to the Go symbols of this executable"},
	}
	app.Commands = []*cli.Command{
		{
			Name:      "resolve",
			Action:    resolve,
			Usage:     "resolve symbol names through the registry",
			ArgsUsage: "NAME...",
		},
		{
			Name:   "libs",
			Action: libs,
			Usage:  "list the process scope and the libraries in load order",
		},
		{
			Name:   "dump",
			Action: dump,
			Usage:  "dump the registry state",
		},
		{
			Name:      "host",
			Action:    host,
			Usage:     "list the Go symbols of this executable",
			ArgsUsage: "[PREFIX]",
		},
	}
	return app
}

// setup builds a registry from the global flags, the config file first.
func setup(ctx *cli.Context, loader dylib.Loader) (r *dylib.Registry, err error) {
	logger := zap.NewNop()
	if ctx.Bool("debug") {
		if logger, err = zap.NewDevelopment(); err != nil {
			return
		}
	}
	opts := []dylib.Option{dylib.WithLogger(logger)}
	if loader != nil {
		opts = append(opts, dylib.WithLoader(loader))
	}
	r = dylib.New(opts...)
	if p := ctx.String("config"); p != "" {
		var c *config.Config
		if c, err = config.Load(p); err != nil {
			return
		}
		if err = c.Apply(r); err != nil {
			return
		}
	}
	if s := ctx.String("order"); s != "" {
		var o dylib.SearchOrdering
		if o, err = dylib.ParseOrdering(s); err != nil {
			return
		}
		if err = r.SetSearchOrdering(o); err != nil {
			return
		}
	}
	if ctx.Bool("process") {
		if _, err = r.LoadPermanent(""); err != nil {
			return
		}
	}
	for _, p := range ctx.StringSlice("preload") {
		if _, err = r.LoadPermanent(p); err != nil {
			return
		}
	}
	if ctx.Bool("host") {
		var t *hostsym.Table
		if t, err = hostsym.New(); err != nil {
			return nil, fmt.Errorf("load host symbols: %w", err)
		}
		r.SetSpecialResolver(t.Resolve)
	}
	return
}

// loaderKey lets tests run the commands against a fake loader.
const loaderKey = "dylib.loader"

func registry(ctx *cli.Context) (*dylib.Registry, error) {
	var loader dylib.Loader
	if l, ok := ctx.App.Metadata[loaderKey].(dylib.Loader); ok {
		loader = l
	}
	return setup(ctx, loader)
}

func resolve(ctx *cli.Context) (err error) {
	names := ctx.Args().Slice()
	if len(names) == 0 {
		return fmt.Errorf("missing symbol names")
	}
	r, err := registry(ctx)
	if err != nil {
		return
	}
	w := ctx.App.Writer
	for _, n := range names {
		if p := r.Resolve(n); p != 0 {
			fmt.Fprintf(w, "%s\t%s\n", n, p)
		} else {
			fmt.Fprintf(w, "%s\tnot found\n", n)
		}
	}
	return
}

func libs(ctx *cli.Context) (err error) {
	r, err := registry(ctx)
	if err != nil {
		return
	}
	printLibs(ctx.App.Writer, r)
	return
}

func printLibs(w io.Writer, r *dylib.Registry) {
	if h, ok := r.Process(); ok {
		fmt.Fprintf(w, "process\t%s\n", h)
	}
	for i, h := range r.Libraries() {
		fmt.Fprintf(w, "%d\t%s\n", i, h)
	}
}

type state struct {
	Ordering  string
	Process   dylib.Handle
	Libraries []dylib.Handle
	Symbols   []string
}

func dump(ctx *cli.Context) (err error) {
	r, err := registry(ctx)
	if err != nil {
		return
	}
	p, _ := r.Process()
	sp := spew.NewDefaultConfig()
	sp.DisableMethods = true
	sp.Fdump(ctx.App.Writer, state{
		Ordering:  r.SearchOrdering().String(),
		Process:   p,
		Libraries: r.Libraries(),
		Symbols:   r.Symbols(),
	})
	return
}

func host(ctx *cli.Context) (err error) {
	t, err := hostsym.New()
	if err != nil {
		return
	}
	for _, n := range t.Names(ctx.Args().First()) {
		fmt.Fprintln(ctx.App.Writer, n)
	}
	return
}
