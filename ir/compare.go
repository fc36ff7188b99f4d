package ir

import (
	"cmp"
	"slices"
	"strings"
)

// Compare returns an integer comparing two nodes: 0 if they are
// structurally equal, -1 if a sorts first and +1 otherwise. Children are
// compared as sets, so the order of entries within a collection does not
// matter.
func Compare(a, b *Node) int {
	if a == b {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if c := cmp.Compare(rank(a.Class), rank(b.Class)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Type(), b.Type()); c != 0 {
		return c
	}
	if c := strings.Compare(a.Value(), b.Value()); c != 0 {
		return c
	}
	switch a.Class {
	case RootClass, ComplexClass:
		for k := range a.colls {
			if c := compareColls(&a.colls[k], &b.colls[k]); c != 0 {
				return c
			}
		}
		return 0
	case AttributeClass:
		return compareBool(a.Indirect, b.Indirect)
	case ReferenceClass:
		if c := strings.Compare(a.RefType(), b.RefType()); c != 0 {
			return c
		}
		if c := strings.Compare(a.RefValue(), b.RefValue()); c != 0 {
			return c
		}
		return compareBool(a.IsAttach(), b.IsAttach())
	case InsertionClass:
		return compareBool(a.Inherit, b.Inherit)
	case IteratorClass:
		return compareColls(&a.iter.coll, &b.iter.coll)
	case LazyNotifClass, InvalidClass:
		return 0
	}
	return 0
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b *Node) bool {
	return Compare(a, b) == 0
}

// rank orders classes: containers first, then leaves.
func rank(c Class) int {
	switch c {
	case RootClass:
		return 0
	case ComplexClass:
		return 1
	case ReferenceClass:
		return 2
	case AttributeClass:
		return 3
	case InsertionClass:
		return 4
	case LazyNotifClass:
		return 5
	case IteratorClass:
		return 6
	case InvalidClass:
		return 7
	}
	return 100
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareColls(a, b *Collection) int {
	if c := cmp.Compare(a.Len(), b.Len()); c != 0 {
		return c
	}
	as, bs := a.Nodes(), b.Nodes()
	slices.SortFunc(as, Compare)
	slices.SortFunc(bs, Compare)
	for i := range as {
		if c := Compare(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return 0
}
