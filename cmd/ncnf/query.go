package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/signadot/ncnf/encode"
	"github.com/signadot/ncnf/ir"
	ncquery "github.com/signadot/ncnf/query"
)

func query(cfg *QueryConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Query.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: query requires an expression", cli.ErrUsage)
	}
	q, err := ncquery.Compile(args[0])
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	for _, file := range withStdin(args[1:]) {
		root, err := getConfFile(cc, file, cfg.readOpts()...)
		if err != nil {
			return err
		}
		err = queryRoot(cfg, cc, q, root)
		root.Destroy()
		if err != nil {
			return fmt.Errorf("error querying %s with %s: %w", file, q, err)
		}
	}
	return nil
}

func queryRoot(cfg *QueryConfig, cc *cli.Context, q *ncquery.Query, root *ir.Node) error {
	sel, err := q.Select(root)
	if err != nil {
		return err
	}
	if !cfg.Tree {
		for _, n := range sel {
			if _, err := fmt.Fprintf(cc.Out, "%s\t%s %s %q\n", n.Path(), n.Class, n.Type(), n.Value()); err != nil {
				return err
			}
		}
		return nil
	}
	for _, n := range sel {
		ncquery.MarkTree(n, 1)
	}
	opts := append(cfg.encOpts(cc.Out), encode.MarkedOnly(true))
	return dumpNode(cfg.MainConfig, cc.Out, root, opts...)
}
