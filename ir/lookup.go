package ir

import "fmt"

// Style selects what GetObj looks for and how it is returned.
type Style int

const (
	// FirstObject returns the first matching child object.
	FirstObject Style = iota
	// FirstAttribute returns the first matching attribute.
	FirstAttribute
	// IterObjects returns an Iterator over all matching child objects.
	IterObjects
	// IterAttributes returns an Iterator over all matching attributes.
	IterAttributes
)

// GetFlags modify GetObj.
type GetFlags int

const (
	GetNoFlags GetFlags = 0
	// GetRecursive continues the search in the ancestors of n when
	// nothing matches at n.
	GetRecursive GetFlags = 1 << iota
	// GetIgnoreRefs skips references.
	GetIgnoreRefs
)

// GetObj searches n for children of the given type and name, where an
// empty type or name matches anything. A reference n is searched through
// its target. For the iterator styles the result is an Iterator node
// holding at least one match.
func (n *Node) GetObj(typ, name string, style Style, flags GetFlags) (*Node, error) {
	if n == nil {
		return nil, ErrInvalid
	}
	for {
		n = n.RealObject()
		switch n.Class {
		case RootClass, ComplexClass:
		case ReferenceClass:
			return nil, fmt.Errorf("%w: unresolved reference %s", ErrInvalid, n)
		case AttributeClass, InsertionClass, IteratorClass, LazyNotifClass:
			return nil, ErrInvalid
		case InvalidClass:
			panic(fmt.Sprintf("lookup in destroyed node %s", n))
		default:
			panic(fmt.Sprintf("unknown class %d", int(n.Class)))
		}
		var sflags SearchFlags
		if flags&GetIgnoreRefs != 0 {
			sflags |= SearchIgnoreReferences
		}
		switch style {
		case FirstObject, FirstAttribute:
			coll := &n.colls[Objects]
			if style == FirstAttribute {
				coll = &n.colls[Attributes]
			}
			if found := coll.Find(sflags, typ, name); found != nil {
				return found, nil
			}
		case IterObjects, IterAttributes:
			coll := &n.colls[Objects]
			if style == IterAttributes {
				coll = &n.colls[Attributes]
			}
			it := NewIterator()
			if cnt, _ := coll.Gather(it, sflags, typ, name); cnt > 0 {
				return it, nil
			}
			it.destroy()
		default:
			return nil, fmt.Errorf("%w: style %d", ErrInvalid, int(style))
		}
		if flags&GetRecursive == 0 || n.Parent == nil {
			return nil, ErrNotFound
		}
		n = n.Parent
	}
}

// Next returns the next node of an iterator, or nil when exhausted.
func (n *Node) Next() *Node {
	if n == nil || n.Class != IteratorClass {
		return nil
	}
	it := n.iter
	if it.pos >= it.coll.Len() {
		return nil
	}
	res := it.coll.At(it.pos)
	it.pos++
	return res
}

// Rewind resets an iterator to its first node.
func (n *Node) Rewind() {
	if n == nil || n.Class != IteratorClass {
		return
	}
	n.iter.pos = 0
}

// Len returns the number of nodes held by an iterator.
func (n *Node) Len() int {
	if n == nil || n.Class != IteratorClass {
		return 0
	}
	return n.iter.coll.Len()
}

// All returns the nodes of an iterator.
func (n *Node) All() []*Node {
	if n == nil || n.Class != IteratorClass {
		return nil
	}
	return n.iter.coll.Nodes()
}

// Release destroys an iterator, leaving the nodes it views alone.
func (n *Node) Release() {
	if n == nil || n.Class != IteratorClass {
		return
	}
	n.destroy()
}
