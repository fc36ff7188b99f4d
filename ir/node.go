package ir

import (
	"fmt"

	"github.com/signadot/ncnf/bstr"
	"github.com/signadot/ncnf/debug"
)

// Node is a configuration tree node. Which fields are meaningful depends
// on Class.
type Node struct {
	Class  Class
	Parent *Node
	Line   int
	// Mark is free for use by read-only consumers such as validators and
	// queries. The resolution and diff engines keep their own state and
	// never touch it.
	Mark int

	typ, val *bstr.Str

	// Root, Complex
	colls [numKinds]Collection

	// Attribute: the value names another attribute whose value is to be
	// copied in during resolution.
	Indirect bool

	// Insertion: local definitions take precedence over inserted ones.
	Inherit bool

	ref  *refInfo
	iter *iterInfo

	udata     any
	notify    NotifyFunc
	notifyKey any
}

type refInfo struct {
	typ, val *bstr.Str
	attach   bool
	target   *Node

	// staged by diff, swapped in by the next resolution
	newTyp, newVal *bstr.Str
}

type iterInfo struct {
	coll Collection
	pos  int
}

// NewNode creates a node of class c. typ and val are retained, not
// copied.
func NewNode(c Class, typ, val *bstr.Str, line int) *Node {
	n := &Node{
		Class: c,
		Line:  line,
		typ:   typ.Ref(),
		val:   val.Ref(),
	}
	switch c {
	case ReferenceClass:
		n.ref = &refInfo{}
	case IteratorClass:
		n.iter = &iterInfo{}
	case RootClass, ComplexClass, AttributeClass, InsertionClass, LazyNotifClass:
	case InvalidClass:
		panic("cannot create invalid node")
	default:
		panic(fmt.Sprintf("unknown class %d", int(c)))
	}
	return n
}

func newOwned(c Class, typ, val string, line int) *Node {
	t, v := bstr.FromString(typ), bstr.FromString(val)
	n := NewNode(c, t, v, line)
	t.Free()
	v.Free()
	return n
}

func NewRoot() *Node {
	return NewNode(RootClass, nil, nil, 0)
}

func NewComplex(typ, val string, line int) *Node {
	return newOwned(ComplexClass, typ, val, line)
}

func NewAttribute(typ, val string, line int) *Node {
	return newOwned(AttributeClass, typ, val, line)
}

// NewIndirect creates an attribute whose value is taken from the
// attribute named target once the tree is resolved.
func NewIndirect(typ, target string, line int) *Node {
	n := newOwned(AttributeClass, typ, target, line)
	n.Indirect = true
	return n
}

// NewReference creates a reference named by typ and val to the object
// named by refTyp and refVal. An attach reference makes its container
// depend on the target for change notification.
func NewReference(typ, val, refTyp, refVal string, attach bool, line int) *Node {
	n := newOwned(ReferenceClass, typ, val, line)
	n.ref.typ = bstr.FromString(refTyp)
	n.ref.val = bstr.FromString(refVal)
	n.ref.attach = attach
	return n
}

func NewInsertion(typ, val string, inherit bool, line int) *Node {
	n := newOwned(InsertionClass, typ, val, line)
	n.Inherit = inherit
	return n
}

func NewIterator() *Node {
	return NewNode(IteratorClass, nil, nil, 0)
}

func (n *Node) Type() string {
	if n == nil {
		return ""
	}
	return n.typ.String()
}

func (n *Node) Value() string {
	if n == nil {
		return ""
	}
	return n.val.String()
}

// TypeStr returns the shared type string; callers must Ref it to keep it.
func (n *Node) TypeStr() *bstr.Str {
	return n.typ
}

func (n *Node) ValueStr() *bstr.Str {
	return n.val
}

// SetValue replaces the value, retaining v.
func (n *Node) SetValue(v *bstr.Str) {
	old := n.val
	n.val = v.Ref()
	old.Free()
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Class {
	case RootClass:
		return "root"
	case ReferenceClass:
		kw := "ref"
		if n.ref.attach {
			kw = "attach"
		}
		return fmt.Sprintf("%s %s \"%s\" = %s \"%s\"", kw, n.typ, n.val, n.ref.typ, n.ref.val)
	case ComplexClass, AttributeClass, InsertionClass, IteratorClass, LazyNotifClass, InvalidClass:
		return fmt.Sprintf("%s \"%s\"", n.typ, n.val)
	default:
		panic(fmt.Sprintf("unknown class %d", int(n.Class)))
	}
}

// Collection returns the collection of kind k of a container, or nil.
func (n *Node) Collection(k Kind) *Collection {
	if n == nil || !n.Class.IsContainer() || k < 0 || k >= numKinds {
		return nil
	}
	return &n.colls[k]
}

func (n *Node) Attributes() *Collection {
	return n.Collection(Attributes)
}

func (n *Node) Objects() *Collection {
	return n.Collection(Objects)
}

func (n *Node) Inserts() *Collection {
	return n.Collection(Inserts)
}

func (n *Node) LazyNotifications() *Collection {
	return n.Collection(LazyNotifications)
}

// Root returns the top of the tree containing n.
func (n *Node) Root() *Node {
	for n != nil && n.Parent != nil {
		n = n.Parent
	}
	return n
}

// Depth returns the number of ancestors of n.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

func (n *Node) RefType() string {
	if n == nil || n.ref == nil {
		return ""
	}
	return n.ref.typ.String()
}

func (n *Node) RefValue() string {
	if n == nil || n.ref == nil {
		return ""
	}
	return n.ref.val.String()
}

// IsAttach reports whether a reference is of the dependent "attach" kind.
func (n *Node) IsAttach() bool {
	return n != nil && n.ref != nil && n.ref.attach
}

func (n *Node) SetAttach(v bool) {
	n.mustBe(ReferenceClass)
	n.ref.attach = v
}

// Target returns the node a reference was resolved to.
func (n *Node) Target() *Node {
	if n == nil || n.ref == nil {
		return nil
	}
	return n.ref.target
}

func (n *Node) SetTarget(t *Node) {
	n.mustBe(ReferenceClass)
	n.ref.target = t
}

// SameRef reports whether references a and b name the same target.
func SameRef(a, b *Node) bool {
	a.mustBe(ReferenceClass)
	b.mustBe(ReferenceClass)
	return bstr.Equal(a.ref.typ, b.ref.typ) && bstr.Equal(a.ref.val, b.ref.val)
}

// StageRef records the target named by other to be swapped in by
// CommitRef.
func (n *Node) StageRef(other *Node) {
	n.mustBe(ReferenceClass)
	other.mustBe(ReferenceClass)
	n.ClearStagedRef()
	n.ref.newTyp = other.ref.typ.Ref()
	n.ref.newVal = other.ref.val.Ref()
}

// NextRef returns the target name a reference resolves to next: the
// staged one if any, otherwise the current one.
func (n *Node) NextRef() (typ, val string) {
	n.mustBe(ReferenceClass)
	if n.ref.newTyp != nil {
		return n.ref.newTyp.String(), n.ref.newVal.String()
	}
	return n.ref.typ.String(), n.ref.val.String()
}

// HasStagedRef reports whether a new target is pending.
func (n *Node) HasStagedRef() bool {
	return n != nil && n.ref != nil && n.ref.newTyp != nil
}

// CommitRef makes the staged target, if any, the current one.
func (n *Node) CommitRef() bool {
	n.mustBe(ReferenceClass)
	r := n.ref
	if r.newTyp == nil {
		return false
	}
	r.typ.Free()
	r.val.Free()
	r.typ, r.val = r.newTyp, r.newVal
	r.newTyp, r.newVal = nil, nil
	return true
}

func (n *Node) ClearStagedRef() {
	if n == nil || n.ref == nil {
		return
	}
	n.ref.newTyp.Free()
	n.ref.newVal.Free()
	n.ref.newTyp, n.ref.newVal = nil, nil
}

// RealObject follows a resolved reference to its target. Other nodes are
// returned unchanged.
func (n *Node) RealObject() *Node {
	if n == nil {
		return nil
	}
	if n.Class == ReferenceClass && n.ref.target != nil {
		return n.ref.target
	}
	return n
}

func (n *Node) mustBe(c Class) {
	if n == nil || n.Class != c {
		panic(fmt.Sprintf("expected %s node, got %s", c, n.classOrNil()))
	}
}

func (n *Node) classOrNil() string {
	if n == nil {
		return "nil"
	}
	return n.Class.String()
}

// Clone deep copies n. Reference targets are shared, not copied, and
// notificators and user data are not carried over.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	n.assertValid()
	c := NewNode(n.Class, n.typ, n.val, n.Line)
	switch n.Class {
	case RootClass, ComplexClass:
		for k := range n.colls {
			src := &n.colls[k]
			dst := &c.colls[k]
			dst.entries = make([]entry, 0, len(src.entries))
			for i := range src.entries {
				cc := src.entries[i].obj.Clone()
				cc.Parent = c
				dst.entries = append(dst.entries, entry{obj: cc})
			}
		}
	case AttributeClass:
		c.Indirect = n.Indirect
	case ReferenceClass:
		c.ref.typ = n.ref.typ.Ref()
		c.ref.val = n.ref.val.Ref()
		c.ref.attach = n.ref.attach
		c.ref.target = n.ref.target
	case InsertionClass:
		c.Inherit = n.Inherit
	case IteratorClass:
		c.iter.coll.entries = append([]entry(nil), n.iter.coll.entries...)
	case LazyNotifClass:
	default:
		panic(fmt.Sprintf("unknown class %d", int(n.Class)))
	}
	return c
}

func (n *Node) assertValid() {
	if n.Class == InvalidClass {
		panic(fmt.Sprintf("use of destroyed node %s", n))
	}
}

// destroy releases n and everything it owns without notification.
func (n *Node) destroy() {
	if n == nil {
		return
	}
	n.assertValid()
	switch n.Class {
	case RootClass, ComplexClass:
		for k := range n.colls {
			n.colls[k].Clear()
		}
	case IteratorClass:
		n.iter.coll.detach()
		n.iter = nil
	case ReferenceClass:
		n.ClearStagedRef()
		n.ref.typ.Free()
		n.ref.val.Free()
		n.ref = nil
	case AttributeClass, InsertionClass, LazyNotifClass:
	default:
		panic(fmt.Sprintf("unknown class %d", int(n.Class)))
	}
	if debug.Assert() {
		debug.Logf("destroy %s\n", n)
	}
	n.typ.Free()
	n.val.Free()
	n.typ, n.val = nil, nil
	n.Class = InvalidClass
	n.Parent = nil
	n.udata = nil
	n.notify = nil
	n.notifyKey = nil
}
