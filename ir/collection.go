package ir

import (
	"bytes"
	"fmt"
)

// MergeFlags control duplicate checking when adding to a Collection.
type MergeFlags int

const (
	MergeNoFlags MergeFlags = 0
	// MergeDupCheck rejects a node whose value, and for attributes and
	// lazy notification holders also whose type, matches an entry
	// already present, ignoring case.
	MergeDupCheck MergeFlags = 1 << iota
	// MergePtrCheck rejects a node already present in the collection.
	MergePtrCheck
	// MergeEmptySrc empties the source collection of a Join.
	MergeEmptySrc
)

// SearchFlags control Collection searches.
type SearchFlags int

const (
	SearchNoFlags SearchFlags = 0
	// SearchIgnoreReferences skips Reference nodes.
	SearchIgnoreReferences SearchFlags = 1 << iota
	// SearchMarkUnsearchable makes each found entry invisible to
	// subsequent searches until it is reset with SetIgnored.
	SearchMarkUnsearchable
	SearchTypeNoCase
	SearchNameNoCase
)

type entry struct {
	obj    *Node
	ignore bool
}

// Collection is an ordered set of nodes owned by a container or, for
// iterators, viewed by it.
type Collection struct {
	entries []entry
}

func (c *Collection) Len() int {
	return len(c.entries)
}

func (c *Collection) At(i int) *Node {
	if i < 0 || i >= len(c.entries) {
		return nil
	}
	return c.entries[i].obj
}

// Ignored reports whether entry i is excluded from searches.
func (c *Collection) Ignored(i int) bool {
	return c.entries[i].ignore
}

func (c *Collection) SetIgnored(i int, v bool) {
	c.entries[i].ignore = v
}

// ResetIgnored makes every entry searchable again.
func (c *Collection) ResetIgnored() {
	for i := range c.entries {
		c.entries[i].ignore = false
	}
}

// Nodes returns a copy of the entries, including ignored ones.
func (c *Collection) Nodes() []*Node {
	res := make([]*Node, len(c.entries))
	for i := range c.entries {
		res[i] = c.entries[i].obj
	}
	return res
}

// IndexOf returns the position of n or -1.
func (c *Collection) IndexOf(n *Node) int {
	for i := range c.entries {
		if c.entries[i].obj == n {
			return i
		}
	}
	return -1
}

func dupKey(n *Node) match {
	m := match{name: n.val.Bytes(), hasName: true}
	switch n.Class {
	case AttributeClass, LazyNotifClass:
		m.typ = n.typ.Bytes()
		m.hasType = true
	case RootClass, ComplexClass, ReferenceClass, InsertionClass, IteratorClass, InvalidClass:
	default:
		panic(fmt.Sprintf("unknown class %d", int(n.Class)))
	}
	return m
}

func (c *Collection) checkInsert(n *Node, flags MergeFlags) error {
	if flags&MergeDupCheck != 0 {
		if c.search(SearchTypeNoCase|SearchNameNoCase, dupKey(n), nil) != -1 {
			return ErrExists
		}
	}
	if flags&MergePtrCheck != 0 {
		if c.IndexOf(n) != -1 {
			return ErrExists
		}
	}
	return nil
}

// Insert appends n.
func (c *Collection) Insert(n *Node, flags MergeFlags) error {
	if n == nil {
		return ErrInvalid
	}
	if err := c.checkInsert(n, flags); err != nil {
		return err
	}
	c.entries = append(c.entries, entry{obj: n})
	return nil
}

// Join appends the contents of src to c, setting the parent of each moved
// node to parent when parent is not nil. Duplicates are checked only
// against the entries c held before the call.
func (c *Collection) Join(src *Collection, parent *Node, flags MergeFlags) error {
	if src == nil {
		return ErrInvalid
	}
	if flags&(MergeDupCheck|MergePtrCheck) != 0 {
		for i := range src.entries {
			if err := c.checkInsert(src.entries[i].obj, flags); err != nil {
				return err
			}
		}
	}
	c.entries = append(c.entries, src.entries...)
	if parent != nil {
		for i := len(c.entries) - len(src.entries); i < len(c.entries); i++ {
			c.entries[i].obj.Parent = parent
		}
	}
	if flags&MergeEmptySrc != 0 {
		src.detach()
	}
	return nil
}

type match struct {
	typ, name        []byte
	hasType, hasName bool
}

func query(typ, name string) match {
	return match{
		typ:     []byte(typ),
		name:    []byte(name),
		hasType: typ != "",
		hasName: name != "",
	}
}

func (m *match) matches(n *Node, flags SearchFlags) bool {
	if m.hasType {
		if flags&SearchTypeNoCase != 0 {
			if !bytes.EqualFold(n.typ.Bytes(), m.typ) {
				return false
			}
		} else if !bytes.Equal(n.typ.Bytes(), m.typ) {
			return false
		}
	}
	if m.hasName {
		if flags&SearchNameNoCase != 0 {
			if !bytes.EqualFold(n.val.Bytes(), m.name) {
				return false
			}
		} else if !bytes.Equal(n.val.Bytes(), m.name) {
			return false
		}
	}
	return true
}

// search returns the position of the first match, or -1. When gather
// is not nil every match is appended to it instead.
func (c *Collection) search(flags SearchFlags, m match, gather *Collection) int {
	found := -1
	for i := range c.entries {
		e := &c.entries[i]
		if !m.matches(e.obj, flags) {
			continue
		}
		if flags&SearchIgnoreReferences != 0 && e.obj.Class == ReferenceClass {
			continue
		}
		if e.ignore {
			continue
		}
		if flags&SearchMarkUnsearchable != 0 {
			e.ignore = true
		}
		if gather == nil {
			return i
		}
		gather.entries = append(gather.entries, entry{obj: e.obj})
		if found == -1 {
			found = i
		}
	}
	return found
}

// Search returns the position of the first searchable entry matching
// typ and name, or -1. An empty typ or name matches anything.
func (c *Collection) Search(flags SearchFlags, typ, name string) int {
	return c.search(flags, query(typ, name), nil)
}

// Find is like Search but returns the node.
func (c *Collection) Find(flags SearchFlags, typ, name string) *Node {
	return c.At(c.Search(flags, typ, name))
}

// SearchExact is like Search but an empty name only matches an empty
// value.
func (c *Collection) SearchExact(flags SearchFlags, typ, name string) int {
	m := query(typ, name)
	m.hasName = true
	return c.search(flags, m, nil)
}

// Gather appends every match to the iterator it and returns the number of
// nodes added.
func (c *Collection) Gather(it *Node, flags SearchFlags, typ, name string) (int, error) {
	if it == nil || it.Class != IteratorClass {
		return 0, ErrInvalid
	}
	before := it.iter.coll.Len()
	c.search(flags, query(typ, name), &it.iter.coll)
	return it.iter.coll.Len() - before, nil
}

// RemoveMarked destroys and removes all entries whose node Mark equals
// mark.
func (c *Collection) RemoveMarked(mark int) {
	c.RemoveFunc(func(n *Node) bool { return n.Mark == mark })
}

// RemoveFunc destroys and removes all entries for which rm returns true,
// preserving the order of the rest.
func (c *Collection) RemoveFunc(rm func(*Node) bool) int {
	j := 0
	removed := 0
	for i := range c.entries {
		e := c.entries[i]
		if rm(e.obj) {
			e.obj.destroy()
			removed++
			continue
		}
		c.entries[j] = e
		j++
	}
	clear(c.entries[j:])
	c.entries = c.entries[:j]
	return removed
}

// AdjustSize grows the backing storage to hold n entries or shrinks the
// collection to n entries, destroying the dropped nodes.
func (c *Collection) AdjustSize(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(c.entries) {
		if n > cap(c.entries) {
			entries := make([]entry, len(c.entries), n)
			copy(entries, c.entries)
			c.entries = entries
		}
		return
	}
	for i := len(c.entries) - 1; i >= n; i-- {
		obj := c.entries[i].obj
		c.entries[i] = entry{}
		c.entries = c.entries[:i]
		obj.destroy()
	}
	if n == 0 {
		c.entries = nil
	}
}

// Truncate is AdjustSize restricted to shrinking.
func (c *Collection) Truncate(n int) {
	if n < len(c.entries) {
		c.AdjustSize(n)
	}
}

// Clear destroys every entry.
func (c *Collection) Clear() {
	c.AdjustSize(0)
}

// detach forgets the entries without destroying them.
func (c *Collection) detach() {
	c.entries = nil
}

// SearchLike returns the position of the first searchable entry with the
// type and value of n, compared exactly.
func (c *Collection) SearchLike(flags SearchFlags, n *Node) int {
	m := match{typ: n.typ.Bytes(), name: n.val.Bytes(), hasType: true, hasName: true}
	return c.search(flags, m, nil)
}

// Take empties the collection and hands its nodes, now without a parent,
// to the caller.
func (c *Collection) Take() []*Node {
	res := c.Nodes()
	for _, n := range res {
		n.Parent = nil
	}
	c.detach()
	return res
}
