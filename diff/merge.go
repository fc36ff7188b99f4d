package diff

import (
	"fmt"
	"log/slog"

	"github.com/signadot/ncnf/debug"
	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/resolve"
)

type merger struct {
	mergeOpts
	delta map[*ir.Node]Delta
	// attach flags of old references before the new ones were copied in
	attach map[*ir.Node]bool
}

// Merge brings the resolved tree old in line with the resolved tree
// new. Both must be roots. new is left as it was and may be destroyed
// afterwards.
//
// Nodes of old matched by type and value in new are kept, with their
// notificators and user data. Nodes only in new are copied in, nodes only
// in old are reported with ir.ObjDestroy and removed, and containers
// whose contents changed are reported with ir.ObjChange. A reference that
// names another target is reported as changed and rebound; an attach
// reference whose target changed is reported as changed too.
//
// If a copy fails or a reference can no longer be bound, old is restored
// and the error returned.
func Merge(old, new *ir.Node, opts ...MergeOption) error {
	if old == nil || new == nil || old.Class != ir.RootClass || new.Class != ir.RootClass {
		return ir.ErrInvalid
	}
	m := &merger{
		delta:  map[*ir.Node]Delta{},
		attach: map[*ir.Node]bool{},
	}
	for _, o := range opts {
		o(&m.mergeOpts)
	}
	if err := m.level(old, new); err != nil {
		m.undo(old)
		m.reset(new)
		return err
	}
	if err := m.check(old); err != nil {
		m.undo(old)
		m.reset(new)
		return err
	}
	m.reset(new)
	// every reference was found above
	if err := resolve.References(old, m.hook); err != nil {
		return fmt.Errorf("rebinding references after merge: %w", err)
	}
	m.notify(old)
	m.lazy(old)
	m.prune(old)
	m.reset(old)
	m.report()
	return nil
}

func (m *merger) level(o, n *ir.Node) error {
	if err := m.compare(o, n, ir.Attributes); err != nil {
		return err
	}
	return m.compare(o, n, ir.Objects)
}

func (m *merger) compare(o, n *ir.Node, k ir.Kind) error {
	coll, ncoll := o.Collection(k), n.Collection(k)
	for i := 0; i < coll.Len(); i++ {
		ent := coll.At(i)
		j := ncoll.SearchLike(ir.SearchNoFlags, ent)
		if j == -1 {
			m.deleted(o, ent)
			continue
		}
		nent := ncoll.At(j)
		if ent.Class != nent.Class {
			m.deleted(o, ent)
			continue
		}
		switch ent.Class {
		case ir.ComplexClass:
			if err := m.level(ent, nent); err != nil {
				return err
			}
			if m.delta[ent] == Changed {
				m.delta[o] = Changed
			}
		case ir.ReferenceClass:
			if !ir.SameRef(ent, nent) {
				m.delta[ent] = Changed
				m.delta[o] = Changed
				ent.StageRef(nent)
			}
			if ent.IsAttach() != nent.IsAttach() {
				if _, ok := m.attach[ent]; !ok {
					m.attach[ent] = ent.IsAttach()
				}
				ent.SetAttach(nent.IsAttach())
			}
		}
		ncoll.SetIgnored(j, true)
	}
	for j := 0; j < ncoll.Len(); j++ {
		if ncoll.Ignored(j) {
			ncoll.SetIgnored(j, false)
			continue
		}
		nent := ncoll.At(j)
		if m.cloneHook != nil {
			if err := m.cloneHook(nent); err != nil {
				return fmt.Errorf("%w: copying %s: %w", ir.ErrNoMem, nent, err)
			}
		}
		c := nent.Clone()
		if err := coll.Insert(c, ir.MergeNoFlags); err != nil {
			c.Destroy()
			return err
		}
		c.Parent = o
		m.delta[c] = Added
		m.delta[o] = Changed
		if debug.Diff() {
			debug.Logf("diff: added %s under %s\n", c, o)
		}
	}
	for i := 0; i < coll.Len(); i++ {
		if m.delta[coll.At(i)] == Deleted {
			coll.SetIgnored(i, true)
		}
	}
	return nil
}

func (m *merger) deleted(parent, n *ir.Node) {
	ir.Walk(n, func(d *ir.Node) error {
		m.delta[d] = Deleted
		return nil
	})
	m.delta[parent] = Changed
	if debug.Diff() {
		debug.Logf("diff: deleted %s under %s\n", n, parent)
	}
}

// check makes sure every surviving reference can be bound.
func (m *merger) check(old *ir.Node) error {
	return ir.Walk(old, func(n *ir.Node) error {
		if m.delta[n] == Deleted {
			return ir.ErrSkipChildren
		}
		if n.Class != ir.ReferenceClass {
			return nil
		}
		if _, err := resolve.Lookup(n); err != nil {
			return ir.NodeErr(n, err)
		}
		return nil
	})
}

func (m *merger) hook(ref *ir.Node, phase resolve.Phase) error {
	switch phase {
	case resolve.BeforeResolve:
		if m.delta[ref] == Deleted {
			return resolve.ErrSkip
		}
	case resolve.AfterResolve:
		if !ref.IsAttach() || m.delta[ref.Target()] == Unmodified {
			return nil
		}
		m.delta[ref] = Changed
		for p := ref.Parent; p != nil && m.delta[p] == Unmodified; p = p.Parent {
			m.delta[p] = Changed
		}
	}
	return nil
}

func (m *merger) each(root *ir.Node, fn func(n *ir.Node, d Delta)) {
	ir.Walk(root, func(n *ir.Node) error {
		fn(n, m.delta[n])
		return nil
	})
}

func (m *merger) notify(root *ir.Node) {
	m.each(root, func(n *ir.Node, d Delta) {
		if d == Unmodified {
			return
		}
		if m.onDelta != nil {
			m.onDelta(n, d)
		}
		fn, _ := n.Notificator()
		switch d {
		case Changed:
			ir.Notify(n, ir.ObjChange)
		case Deleted:
			ir.Notify(n, ir.ObjDestroy)
		case Added:
			if fn != nil {
				panic(fmt.Sprintf("added node %s already has a notificator", n))
			}
		}
	})
}

func (m *merger) lazy(root *ir.Node) {
	m.each(root, func(n *ir.Node, d Delta) {
		if d != Changed || !n.Class.IsContainer() {
			return
		}
		ir.CheckLazyFilters(n, func(c *ir.Node) bool {
			return m.delta[c] == Added
		})
	})
}

func (m *merger) prune(root *ir.Node) {
	m.each(root, func(n *ir.Node, _ Delta) {
		if !n.Class.IsContainer() {
			return
		}
		rm := func(c *ir.Node) bool { return m.delta[c] == Deleted }
		n.Objects().RemoveFunc(rm)
		n.Attributes().RemoveFunc(rm)
	})
}

// undo removes what level copied into old and forgets staged changes.
func (m *merger) undo(old *ir.Node) {
	m.truncate(old)
	for ref, v := range m.attach {
		ref.SetAttach(v)
	}
	m.reset(old)
}

func (m *merger) truncate(n *ir.Node) {
	attrs := n.Attributes()
	for i := 0; i < attrs.Len(); i++ {
		if m.delta[attrs.At(i)] == Added {
			attrs.Truncate(i)
			break
		}
	}
	objs := n.Objects()
	for i := 0; i < objs.Len(); i++ {
		o := objs.At(i)
		if m.delta[o] == Added {
			objs.Truncate(i)
			break
		}
		if o.Class == ir.ComplexClass {
			m.truncate(o)
		}
	}
}

// reset clears search exclusions and staged references below root.
func (m *merger) reset(root *ir.Node) {
	ir.Walk(root, func(n *ir.Node) error {
		if n.Class.IsContainer() {
			n.Attributes().ResetIgnored()
			n.Objects().ResetIgnored()
		} else if n.Class == ir.ReferenceClass {
			n.ClearStagedRef()
		}
		return nil
	})
}

func (m *merger) report() {
	if m.log == nil {
		return
	}
	var counts [4]int
	for _, d := range m.delta {
		counts[d]++
	}
	m.log.Debug("merged configuration",
		slog.Int("added", counts[Added]),
		slog.Int("changed", counts[Changed]),
		slog.Int("deleted", counts[Deleted]))
}
