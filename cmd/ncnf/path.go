package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/signadot/ncnf/ir"
)

func path(cfg *PathConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Path.Parse(cc, args)
	if err != nil {
		cfg.Path.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) == 0 || args[0] == "" {
		return fmt.Errorf("%w: path requires one argument, a path of values", cli.ErrUsage)
	}
	p := args[0]
	for _, file := range withStdin(args[1:]) {
		root, err := getConfFile(cc, file, cfg.readOpts()...)
		if err != nil {
			return err
		}
		err = pathRoot(cfg, cc, root, p)
		root.Destroy()
		if err != nil {
			return fmt.Errorf("error getting %s from %s: %w", p, file, err)
		}
	}
	return nil
}

func pathRoot(cfg *PathConfig, cc *cli.Context, root *ir.Node, p string) error {
	n, err := ir.ResolvePath(root, p, cfg.Delim, cfg.Reverse)
	if err != nil {
		return err
	}
	return dumpNode(cfg.MainConfig, cc.Out, n.RealObject(), cfg.encOpts(cc.Out)...)
}
