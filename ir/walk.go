package ir

import (
	"errors"
	"fmt"
)

// WalkFunc is called for each node visited by Walk.
type WalkFunc func(n *Node) error

// Walk visits n and its descendants in pre-order: a container, then the
// contents of its four collections in order. Attributes and references
// are visited as leaves. Insertions, iterators and lazy notification
// holders are bookkeeping and are neither visited nor descended into.
//
// Walk stops at the first error returned by fn and returns it, except for
// ErrSkipChildren which only prunes the current container.
func Walk(n *Node, fn WalkFunc) error {
	if n == nil || fn == nil {
		return ErrInvalid
	}
	return walk(n, fn)
}

func walk(n *Node, fn WalkFunc) error {
	switch n.Class {
	case RootClass, ComplexClass:
		if err := fn(n); err != nil {
			if errors.Is(err, ErrSkipChildren) {
				return nil
			}
			return err
		}
		for k := range n.colls {
			coll := &n.colls[k]
			// fn may remove entries from coll
			for i := 0; i < len(coll.entries); i++ {
				if err := walk(coll.entries[i].obj, fn); err != nil {
					return err
				}
			}
		}
		return nil
	case AttributeClass, ReferenceClass:
		err := fn(n)
		if errors.Is(err, ErrSkipChildren) {
			return nil
		}
		return err
	case InsertionClass, IteratorClass, LazyNotifClass:
		return nil
	case InvalidClass:
		panic(fmt.Sprintf("walk into destroyed node %s", n))
	default:
		panic(fmt.Sprintf("unknown class %d", int(n.Class)))
	}
}

// Count returns the number of nodes Walk would visit.
func Count(n *Node) int {
	c := 0
	Walk(n, func(*Node) error {
		c++
		return nil
	})
	return c
}
