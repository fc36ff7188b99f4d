package main

import (
	"errors"
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/signadot/ncnf"
	"github.com/signadot/ncnf/asyncval"
	"github.com/signadot/ncnf/ir"
)

func validate(cfg *ValidateConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Validate.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: validate requires at least one file", cli.ErrUsage)
	}
	failed := 0
	for _, file := range args {
		root, err := cfg.read(cc, file)
		if err != nil {
			failed++
			fmt.Fprintf(cc.Out, "%s: %v\n", file, err)
			continue
		}
		if !cfg.Quiet {
			fmt.Fprintf(cc.Out, "%s: ok, %d nodes\n", file, ir.Count(root))
		}
		root.Destroy()
	}
	if failed != 0 {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// read reads file, waiting for the external validator when one is
// configured.
func (cfg *ValidateConfig) read(cc *cli.Context, file string) (*ir.Node, error) {
	opts := cfg.readOpts()
	if cfg.Validator == "" || file == "-" {
		return getConfFile(cc, file, opts...)
	}
	s := &asyncval.Session{Logger: theLog}
	opts = append(opts, ncnf.WithAsyncValidation(s, cfg.Validator))
	for {
		root, err := ncnf.ReadFile(file, opts...)
		if !errors.Is(err, asyncval.ErrAgain) {
			return root, err
		}
		<-s.Done()
	}
}
