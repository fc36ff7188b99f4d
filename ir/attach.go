package ir

import (
	"fmt"
	"slices"
)

// Attach adds what to the container n, in the collection matching its
// class. Attaching a Root moves all of its collections into n and leaves
// the emptied root destroyed. Unless relaxed is set, entries are checked
// for case-insensitive duplicates.
func (n *Node) Attach(what *Node, relaxed bool) error {
	if n == nil || what == nil {
		return ErrInvalid
	}
	if !n.Class.IsContainer() {
		return fmt.Errorf("%w: cannot attach to %s", ErrInvalid, n.Class)
	}
	flags := MergeDupCheck | MergeEmptySrc
	if relaxed {
		flags = MergeEmptySrc
	}
	switch what.Class {
	case ComplexClass, ReferenceClass, AttributeClass, InsertionClass, LazyNotifClass:
		k, _ := KindOf(what.Class)
		if err := n.colls[k].Insert(what, flags); err != nil {
			return err
		}
		what.Parent = n
		return nil
	case RootClass:
		for k := range n.colls {
			if err := n.colls[k].Join(&what.colls[k], n, flags); err != nil {
				what.destroy()
				return err
			}
		}
		what.destroy()
		return nil
	case IteratorClass, InvalidClass:
		return fmt.Errorf("%w: cannot attach %s", ErrInvalid, what.Class)
	default:
		panic(fmt.Sprintf("unknown class %d", int(what.Class)))
	}
}

// Detach removes n from its parent's collection without destroying it.
func (n *Node) Detach() error {
	if n == nil || n.Parent == nil {
		return ErrInvalid
	}
	k, ok := KindOf(n.Class)
	if !ok {
		return ErrInvalid
	}
	coll := &n.Parent.colls[k]
	i := coll.IndexOf(n)
	if i == -1 {
		return ErrNotFound
	}
	coll.entries = slices.Delete(coll.entries, i, i+1)
	n.Parent = nil
	return nil
}
