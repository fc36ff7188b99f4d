package main

import (
	"github.com/scott-cotton/cli"
	"github.com/signadot/ncnf/reload"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "ncnf").
		WithSynopsis("ncnf [opts] command [opts]").
		WithDescription("ncnf is a tool for working with ncnf configuration files.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return ncnfMain(cfg, cc, args)
		}).
		WithSubs(
			DumpCommand(cfg),
			DiffCommand(cfg),
			ValidateCommand(cfg),
			QueryCommand(cfg),
			PathCommand(cfg),
			WatchCommand(cfg))
}

func DumpCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DumpConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Dump, "dump").
		WithAliases("d").
		WithSynopsis("dump [-flat type] [files]").
		WithDescription("read, resolve and print configuration files").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return dump(cfg, cc, args)
		})
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Diff, "diff").
		WithAliases("di").
		WithSynopsis("diff [-deltas | -patch] old new").
		WithDescription("compare two configuration files").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return diff(cfg, cc, args)
		})
}

func ValidateCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ValidateConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Validate, "validate").
		WithAliases("v", "check").
		WithSynopsis("validate [-validator cmd] files").
		WithDescription(validateDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return validate(cfg, cc, args)
		})
}

const validateDescription = `validate reads configuration files and reports whether they are valid.

A file is valid when it parses, all its insertions and references resolve,
and it passes the rules named by its "_validator-rules" attribute and the
embedded policies enabled by "_validator-embedded".

With -validator, the given command is run first, with "$config_file"
replaced by the file name.  When it succeeds the internal checks past
resolution are skipped.`

func QueryCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &QueryConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Query, "query").
		WithAliases("q").
		WithSynopsis("query [-tree] <expr> [files]").
		WithDescription(queryDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return query(cfg, cc, args)
		})
}

const queryDescription = `query selects the nodes of configuration files matching an expression.

The expression sees, for each node, the variables
  class  type  value  line  depth
and the functions
  attr(name)  has(name)  path()  truth(s)

For example

  ncnf query 'type == "svc" && has("port")' app.conf

With -tree the selected nodes are printed with their ancestors and
descendants, as configuration.`

func PathCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PathConfig{MainConfig: mainCfg, Delim: "/"}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Path, "path").
		WithAliases("p", "get").
		WithSynopsis("path [-d delim] [-r] <path> [files]").
		WithDescription("print the object reached by a path of values").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return path(cfg, cc, args)
		})
}

func WatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &WatchConfig{MainConfig: mainCfg, Debounce: reload.DefaultDebounce}
	debounceOpt := &cli.Opt{
		Name:        "debounce",
		Description: "delay between a change and the reload",
		Type:        cli.NamedFuncOpt(cli.FuncOpt(cfg.mkDebounce()), "(duration)"),
	}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, debounceOpt)
	return cli.NewCommandAt(&cfg.Watch, "watch").
		WithAliases("w").
		WithSynopsis("watch [-validator cmd] [-metrics addr] file").
		WithDescription("reload a configuration file whenever it changes, printing what changed").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return watch(cfg, cc, args)
		})
}
