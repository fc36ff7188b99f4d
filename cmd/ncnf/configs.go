package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/signadot/ncnf"
	"github.com/signadot/ncnf/encode"
)

type MainConfig struct {
	Color   bool `cli:"name=color desc='encode with color'"`
	Verbose bool `cli:"name=verbose aliases=V desc='annotate output with line numbers'"`
	Indent  int  `cli:"name=indent desc='indentation width (default 2)'"`

	J bool `cli:"name=j aliases=json desc='output json'"`
	Y bool `cli:"name=y aliases=yaml desc='output yaml'"`

	Relaxed    bool `cli:"name=relaxed desc='allow similar entries and duplicate insertions'"`
	NoRules    bool `cli:"name=norules desc='do not apply the rule file'"`
	NoEmbedded bool `cli:"name=noembedded desc='do not apply the embedded policies'"`
	Debug      bool `cli:"name=debug desc='log debug messages'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) readOpts() []ncnf.ReadOption {
	res := []ncnf.ReadOption{ncnf.WithLogger(theLog)}
	if cfg.Relaxed {
		res = append(res, ncnf.Relaxed())
	}
	if cfg.NoRules {
		res = append(res, ncnf.NoRules())
	}
	if cfg.NoEmbedded {
		res = append(res, ncnf.NoEmbedded())
	}
	return res
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	res := []encode.EncodeOption{
		encode.Verbose(cfg.Verbose),
	}
	if cfg.Indent > 0 {
		res = append(res, encode.Indent(cfg.Indent))
	}
	if cfg.Color {
		res = append(res, encode.EncodeColors(encode.NewColors()))
		return res
	}
	colorsSet := false
	for _, opt := range cfg.Main.Opts {
		if opt.Name != "color" {
			continue
		}
		colorsSet = opt.Value != nil
		break
	}
	if colorsSet {
		return res
	}
	f, ok := w.(*os.File)
	if !ok {
		return res
	}
	if isatty.IsTerminal(f.Fd()) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

type DumpConfig struct {
	*MainConfig
	Flat string `cli:"name=flat desc='list the objects of a type, or * for all'"`
	Dump *cli.Command
}

type DiffConfig struct {
	*MainConfig
	Deltas bool `cli:"name=deltas desc='merge new into old and list the changes'"`
	Patch  bool `cli:"name=patch desc='output a json merge patch'"`
	Diff   *cli.Command
}

type ValidateConfig struct {
	*MainConfig
	Validator string `cli:"name=validator desc='external validator command'"`
	Quiet     bool   `cli:"name=q desc='only report errors'"`
	Validate  *cli.Command
}

type QueryConfig struct {
	*MainConfig
	Tree  bool `cli:"name=tree desc='print the selection as configuration'"`
	Query *cli.Command
}

type PathConfig struct {
	*MainConfig
	Delim   string `cli:"name=d desc='path delimiter (default /)'"`
	Reverse bool   `cli:"name=r desc='path lists the innermost value first'"`
	Path    *cli.Command
}

type WatchConfig struct {
	*MainConfig
	Validator string `cli:"name=validator desc='external validator command'"`
	Metrics   string `cli:"name=metrics desc='serve prometheus metrics on this address'"`
	Gops      bool   `cli:"name=gops desc='start a gops agent'"`
	Debounce  time.Duration

	Watch *cli.Command
}

func (cfg *WatchConfig) mkDebounce() func(cc *cli.Context, a string) (any, error) {
	return func(_ *cli.Context, a string) (any, error) {
		d, err := time.ParseDuration(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		cfg.Debounce = d
		return d, nil
	}
}
