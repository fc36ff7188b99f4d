package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/scott-cotton/cli"
	"github.com/signadot/ncnf/encode"
	"github.com/signadot/ncnf/ir"
)

func dump(cfg *DumpConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Dump.Parse(cc, args)
	if err != nil {
		return err
	}
	files := withStdin(args)
	for i, file := range files {
		root, err := getConfFile(cc, file, cfg.readOpts()...)
		if err != nil {
			return err
		}
		err = dumpNode(cfg.MainConfig, cc.Out, root, cfg.encOpts(cc.Out, cfg.Flat)...)
		root.Destroy()
		if err != nil {
			return fmt.Errorf("error encoding %s: %w", file, err)
		}
		if i < len(files)-1 {
			if _, err := cc.Out.Write([]byte("\n")); err != nil {
				return err
			}
		}
	}
	return nil
}

func (cfg *DumpConfig) encOpts(w io.Writer, flat string) []encode.EncodeOption {
	res := cfg.MainConfig.encOpts(w)
	if flat != "" {
		res = append(res, encode.Flatten(flat))
	}
	return res
}

// dumpNode writes n in the output format selected by cfg, ending in a
// single newline.
func dumpNode(cfg *MainConfig, w io.Writer, n *ir.Node, opts ...encode.EncodeOption) error {
	var (
		d   []byte
		err error
	)
	switch {
	case cfg.J:
		d, err = encode.JSON(n)
		d = append(d, '\n')
	case cfg.Y:
		d, err = encode.YAML(n)
	default:
		buf := &bytes.Buffer{}
		err = encode.Encode(n, buf, opts...)
		d = append(bytes.TrimRight(buf.Bytes(), "\n"), '\n')
	}
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}
