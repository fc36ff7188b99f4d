package resolve

import (
	"errors"
	"fmt"

	"github.com/signadot/ncnf/ir"
)

// Phase tells a Hook where in the binding of a reference it is called.
type Phase int

const (
	BeforeResolve Phase = iota
	AfterResolve
)

// Hook is called around the binding of each reference. Returning ErrSkip
// before resolution leaves the reference as it is; any other error aborts.
type Hook func(ref *ir.Node, phase Phase) error

// References binds every reference under root to its target, swapping in
// any staged target first, and replaces each indirect assignment by the
// value of the attribute it names.
func References(root *ir.Node, hook Hook) error {
	if root == nil {
		return ir.ErrInvalid
	}
	return ir.Walk(root, func(n *ir.Node) error {
		return assign(n, hook, 0)
	})
}

// Lookup finds the object the reference ref is to be bound to, without
// binding it.
func Lookup(ref *ir.Node) (*ir.Node, error) {
	typ, val := ref.NextRef()
	t, err := ref.Parent.GetObj(typ, val, ir.FirstObject, ir.GetRecursive|ir.GetIgnoreRefs)
	if err != nil {
		kw := "ref"
		if ref.IsAttach() {
			kw = "attach"
		}
		return nil, fmt.Errorf("cannot find right-hand object in reference `%s %s \"%s\" = %s \"%s\"': %w",
			kw, ref.Type(), ref.Value(), typ, val, err)
	}
	return t, nil
}

func assign(n *ir.Node, hook Hook, depth int) error {
	depth++
	if depth > MaxDepth {
		return ir.ErrTooDeep
	}
	switch n.Class {
	case ir.ReferenceClass:
		if hook != nil {
			if err := hook(n, BeforeResolve); err != nil {
				if errors.Is(err, ErrSkip) {
					return nil
				}
				return err
			}
		}
		t, err := Lookup(n)
		if err != nil {
			return ir.NodeErr(n, err)
		}
		n.CommitRef()
		n.SetTarget(t)
		if hook != nil {
			return hook(n, AfterResolve)
		}
		return nil
	case ir.AttributeClass:
		if !n.Indirect {
			return nil
		}
		src, err := n.Parent.GetObj(n.Value(), "", ir.FirstAttribute, ir.GetRecursive|ir.GetIgnoreRefs)
		if err != nil {
			return ir.NodeErr(n, fmt.Errorf("cannot find the right-hand attribute %q: %w", n.Value(), err))
		}
		if src == n {
			return ir.NodeErr(n, fmt.Errorf("%w: assignment resolves to itself", ir.ErrInvalid))
		}
		if src.Indirect {
			if err := assign(src, hook, depth); err != nil {
				if errors.Is(err, ir.ErrTooDeep) && depth == 1 {
					return ir.NodeErr(n, fmt.Errorf("too deep recursion to expand: %w", err))
				}
				return err
			}
		}
		n.SetValue(src.ValueStr())
		n.Indirect = false
		return nil
	default:
		return nil
	}
}
