package main

import (
	"fmt"
	"io"

	"github.com/scott-cotton/cli"
	"github.com/signadot/ncnf"
	ncdiff "github.com/signadot/ncnf/diff"
	"github.com/signadot/ncnf/encode"
	"github.com/signadot/ncnf/ir"
)

func diff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		cfg.Diff.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff requires 2 args, got %v", cli.ErrUsage, args)
	}
	if cfg.Deltas && cfg.Patch {
		return fmt.Errorf("%w: -deltas and -patch are exclusive", cli.ErrUsage)
	}
	old, err := getConfFile(cc, args[0], cfg.readOpts()...)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", args[0], err)
	}
	defer old.Destroy()
	new, err := getConfFile(cc, args[1], cfg.readOpts()...)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", args[1], err)
	}
	var differs bool
	switch {
	case cfg.Deltas:
		differs, err = diffDeltas(cc.Out, old, new)
	case cfg.Patch:
		differs, err = diffPatch(cc.Out, old, new)
	default:
		from, to := encode.MustString(old), encode.MustString(new)
		new.Destroy()
		if d := ncdiff.Text(from+"\n", to+"\n"); d != "" {
			differs = true
			_, err = io.WriteString(cc.Out, d)
		}
	}
	if err != nil {
		return err
	}
	if differs {
		return cli.ExitCodeErr(1)
	}
	return nil
}

// diffDeltas merges new into old, consuming new, and lists every node
// the merge touched.
func diffDeltas(w io.Writer, old, new *ir.Node) (bool, error) {
	differs := false
	var werr error
	err := ncnf.Diff(old, new,
		ncdiff.WithLogger(theLog),
		ncdiff.OnDelta(func(n *ir.Node, d ncdiff.Delta) {
			if d == ncdiff.Unmodified || n.Class == ir.RootClass {
				return
			}
			differs = true
			if werr == nil {
				_, werr = fmt.Fprintf(w, "%s\t%s %s %q\n", d, n.Class, n.Type(), n.Path())
			}
		}))
	if err != nil {
		return false, err
	}
	return differs, werr
}

func diffPatch(w io.Writer, old, new *ir.Node) (bool, error) {
	defer new.Destroy()
	from, err := encode.JSON(old)
	if err != nil {
		return false, err
	}
	to, err := encode.JSON(new)
	if err != nil {
		return false, err
	}
	p, err := ncdiff.MergePatch(from, to)
	if err != nil {
		return false, err
	}
	if string(p) == "{}" {
		return false, nil
	}
	_, err = w.Write(append(p, '\n'))
	return true, err
}
