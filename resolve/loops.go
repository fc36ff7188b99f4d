package resolve

import (
	"fmt"
	"slices"

	"github.com/signadot/ncnf/ir"
)

// CheckLoops verifies that no container inserts itself, directly or
// through other insertions, and that every insertion names an existing
// object.
func CheckLoops(root *ir.Node) error {
	if root == nil || root.Class != ir.RootClass {
		return ir.ErrInvalid
	}
	lc := &loopChecker{clean: map[*ir.Node]int{}}
	return lc.check(root, make([]*ir.Node, 0, MaxDepth))
}

// loopChecker remembers, for each container found free of cycles, the
// deepest stack it was checked under. A revisit under a stack no deeper
// cannot find anything new.
type loopChecker struct {
	clean map[*ir.Node]int
}

func (lc *loopChecker) check(n *ir.Node, stack []*ir.Node) error {
	if d, ok := lc.clean[n]; ok && len(stack) <= d {
		return nil
	}
	if err := lc.walk(n, stack); err != nil {
		return err
	}
	lc.clean[n] = len(stack)
	return nil
}

func (lc *loopChecker) walk(n *ir.Node, stack []*ir.Node) error {
	if i := slices.Index(stack, n); i != -1 {
		cerr := &ir.CycleError{}
		for _, s := range append(stack[i:len(stack):len(stack)], n) {
			cerr.Path = append(cerr.Path, ir.PathElt{Type: s.Type(), Value: s.Value(), Line: s.Line})
		}
		return cerr
	}
	ins := n.Inserts()
	if ins.Len() > 0 {
		stack = append(stack, n)
		if len(stack) >= MaxDepth {
			return ir.NodeErr(n, ir.ErrTooManyRefs)
		}
	}
	for i := 0; i < ins.Len(); i++ {
		in := ins.At(i)
		obj, err := n.GetObj(in.Type(), in.Value(), ir.FirstObject, ir.GetRecursive|ir.GetIgnoreRefs)
		if err != nil {
			return ir.NodeErr(in, fmt.Errorf("could not find object for insertion: %w", err))
		}
		if err := lc.check(obj, stack); err != nil {
			return err
		}
	}
	objs := n.Objects()
	for i := 0; i < objs.Len(); i++ {
		obj := objs.At(i)
		switch obj.Class {
		case ir.ComplexClass:
			if err := lc.check(obj, stack); err != nil {
				return err
			}
		case ir.ReferenceClass:
		case ir.RootClass, ir.AttributeClass, ir.InsertionClass, ir.IteratorClass, ir.LazyNotifClass, ir.InvalidClass:
			panic(fmt.Sprintf("%s in objects of %s", obj.Class, n))
		default:
			panic(fmt.Sprintf("unknown class %d", int(obj.Class)))
		}
	}
	return nil
}
