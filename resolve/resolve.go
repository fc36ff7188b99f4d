package resolve

import (
	"fmt"
	"log/slog"

	"github.com/signadot/ncnf/debug"
	"github.com/signadot/ncnf/ir"
)

type resolver struct {
	resolveOpts
	// containers already expanded as the source of an insertion
	done map[*ir.Node]bool
}

// Resolve expands the insertions of n and its descendants. For a Root it
// first checks for insertion loops and finally binds references and
// indirect assignments. On error the tree may be partly expanded and is
// to be destroyed by the caller.
func Resolve(n *ir.Node, opts ...Option) error {
	if n == nil {
		return ir.ErrInvalid
	}
	r := &resolver{done: map[*ir.Node]bool{}}
	for _, o := range opts {
		o(&r.resolveOpts)
	}
	if r.log == nil {
		r.log = slog.New(slog.DiscardHandler)
	}
	return r.resolve(n)
}

func (r *resolver) resolve(n *ir.Node) error {
	if !n.Class.IsContainer() {
		return nil
	}
	if n.Class == ir.RootClass {
		if err := CheckLoops(n); err != nil {
			return err
		}
	}
	inserts := n.Inserts().Take()
	var err error
	for _, in := range inserts {
		if err = r.expand(n, in); err != nil {
			break
		}
	}
	for _, in := range inserts {
		in.Destroy()
	}
	if err != nil {
		return err
	}
	objs := n.Objects()
	for i := 0; i < objs.Len(); i++ {
		if obj := objs.At(i); obj.Class == ir.ComplexClass {
			if err := r.resolve(obj); err != nil {
				return err
			}
		}
	}
	if n.Class == ir.RootClass {
		return References(n, nil)
	}
	return nil
}

// expand copies the attributes and objects of the container named by in
// into n. Inheriting insertions leave the types n defines itself alone.
func (r *resolver) expand(n, in *ir.Node) error {
	src, err := n.GetObj(in.Type(), in.Value(), ir.FirstObject, ir.GetRecursive|ir.GetIgnoreRefs)
	if err != nil {
		return ir.NodeErr(in, fmt.Errorf("cannot resolve insertion: %w", err))
	}
	if !r.done[src] {
		r.done[src] = true
		if err := r.resolve(src); err != nil {
			return err
		}
	}
	flags := ir.MergeDupCheck
	if r.relaxed {
		flags = ir.MergeNoFlags
	}
	for _, k := range [...]ir.Kind{ir.Attributes, ir.Objects} {
		from, to := src.Collection(k), n.Collection(k)
		for i := 0; i < from.Len(); i++ {
			child := from.At(i)
			if in.Inherit && to.Search(ir.SearchNoFlags, child.Type(), "") != -1 {
				continue
			}
			c := child.Clone()
			if err := to.Insert(c, flags); err != nil {
				c.Destroy()
				return ir.NodeErr(n, fmt.Errorf("cannot insert %s from line %d: similar entry already there: %w",
					child, child.Line, err))
			}
			c.Parent = n
			if in.Inherit {
				// copied entries must not hide later ones of the same type
				to.SetIgnored(to.Len()-1, true)
			}
		}
		if in.Inherit {
			to.ResetIgnored()
		}
	}
	if debug.Resolve() {
		debug.Logf("expanded %s into %s\n", src, n)
	}
	r.log.Debug("expanded insertion", "into", n.String(), "from", src.String(), "line", in.Line, "inherit", in.Inherit)
	return nil
}
