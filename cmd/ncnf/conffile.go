package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"
	"github.com/signadot/ncnf"
	"github.com/signadot/ncnf/ir"
)

// getConfFile reads the configuration at path, or standard input for "-".
func getConfFile(cc *cli.Context, path string, opts ...ncnf.ReadOption) (*ir.Node, error) {
	if path != "-" {
		return ncnf.ReadFile(path, opts...)
	}
	d, err := io.ReadAll(cc.In)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", path, err)
	}
	return ncnf.Read(d, opts...)
}

func withStdin(args []string) []string {
	if len(args) == 0 {
		return []string{"-"}
	}
	return args
}
