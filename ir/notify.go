package ir

import (
	"fmt"

	"github.com/signadot/ncnf/debug"
)

// Event is delivered to a NotifyFunc.
type Event int

const (
	UdataAttach Event = iota
	UdataDetach
	NotifAttach
	NotifDetach
	ObjAdd
	ObjChange
	ObjDestroy
)

func (e Event) String() string {
	switch e {
	case UdataAttach:
		return "udata-attach"
	case UdataDetach:
		return "udata-detach"
	case NotifAttach:
		return "notif-attach"
	case NotifDetach:
		return "notif-detach"
	case ObjAdd:
		return "obj-add"
	case ObjChange:
		return "obj-change"
	case ObjDestroy:
		return "obj-destroy"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// NotifyFunc receives events for n. Returning an error from an attach or
// detach event vetoes it; the result is ignored for the others.
type NotifyFunc func(n *Node, ev Event, key any) error

// allTypes is the type of a lazy notification holder with no filter.
const allTypes = "#AlLObJeCtS#"

// NewLazyHolder creates a lazy notification holder for children of type
// filter, or of any type when filter is empty.
func NewLazyHolder(filter string) *Node {
	if filter == "" {
		filter = allTypes
	}
	return newOwned(LazyNotifClass, filter, "", 0)
}

// Filter returns the child type a lazy notification holder watches, or ""
// for all types.
func (n *Node) Filter() string {
	if n == nil || n.Class != LazyNotifClass {
		return ""
	}
	if t := n.Type(); t != allTypes {
		return t
	}
	return ""
}

// Notificator returns the callback attached to n and its key.
func (n *Node) Notificator() (NotifyFunc, any) {
	if n == nil {
		return nil, nil
	}
	return n.notify, n.notifyKey
}

func (n *Node) UserData() any {
	if n == nil {
		return nil
	}
	return n.udata
}

// Notify delivers ev to the notificator of n, if any.
func Notify(n *Node, ev Event) error {
	if n == nil || n.notify == nil {
		return nil
	}
	if debug.Notify() {
		debug.Logf("notify %s %s\n", n, ev)
	}
	return n.notify(n, ev, n.notifyKey)
}

// NotifyTree delivers ev to every notificator in the subtree of n.
func NotifyTree(n *Node, ev Event) {
	_ = Walk(n, func(c *Node) error {
		_ = Notify(c, ev)
		return nil
	})
}

// NotificatorAttach replaces the notificator of n. The old one receives
// NotifDetach and the new one NotifAttach; a veto of the former keeps the
// old notificator, a veto of the latter leaves none. Both report
// ErrDenied.
func NotificatorAttach(n *Node, fn NotifyFunc, key any) error {
	if n == nil {
		return ErrInvalid
	}
	return swapNotificator(n, n, fn, key)
}

// swapNotificator runs the detach/attach protocol for the callback stored
// on holder, reporting events about subject.
func swapNotificator(holder, subject *Node, fn NotifyFunc, key any) error {
	oldFn, oldKey := holder.notify, holder.notifyKey
	holder.notify, holder.notifyKey = nil, nil
	if oldFn != nil {
		if err := oldFn(subject, NotifDetach, oldKey); err != nil {
			holder.notify, holder.notifyKey = oldFn, oldKey
			return fmt.Errorf("%w: detach vetoed: %w", ErrDenied, err)
		}
	}
	holder.notify, holder.notifyKey = fn, key
	if fn != nil {
		if err := fn(subject, NotifAttach, key); err != nil {
			holder.notify, holder.notifyKey = nil, nil
			return fmt.Errorf("%w: attach vetoed: %w", ErrDenied, err)
		}
	}
	return nil
}

// AttachUdata replaces the user data of n, giving its notificator the
// chance to veto dropping the old data and accepting the new.
func AttachUdata(n *Node, data any) error {
	if n == nil {
		return ErrInvalid
	}
	if n.udata != nil && n.notify != nil {
		if err := n.notify(n, UdataDetach, n.notifyKey); err != nil {
			return fmt.Errorf("%w: udata detach vetoed: %w", ErrDenied, err)
		}
	}
	old := n.udata
	n.udata = data
	if data != nil && n.notify != nil {
		if err := n.notify(n, UdataAttach, n.notifyKey); err != nil {
			n.udata = old
			return fmt.Errorf("%w: udata attach vetoed: %w", ErrDenied, err)
		}
	}
	return nil
}

// LazyNotificator installs fn on container to be told of children of type
// filter, or of any type when filter is empty. Matching children already
// present whose real object has no notificator of its own are reported
// with ObjAdd right away, and later additions by the diff engine are
// reported the same way.
func LazyNotificator(container *Node, filter string, fn NotifyFunc, key any) error {
	if container == nil || !container.Class.IsContainer() {
		return ErrInvalid
	}
	holder := NewLazyHolder(filter)
	coll := &container.colls[LazyNotifications]
	adding := true
	if i := coll.SearchExact(SearchNoFlags, holder.Type(), ""); i != -1 {
		holder.destroy()
		holder = coll.At(i)
		adding = false
	}
	if err := swapNotificator(holder, container, fn, key); err != nil {
		if adding {
			holder.destroy()
		}
		return err
	}
	if adding {
		if err := container.Attach(holder, false); err != nil {
			holder.Destroy()
			return err
		}
	}
	CheckLazyFilters(container, nil)
	return nil
}

// CheckLazyFilters reports ObjAdd to the lazy notificators of container
// for each matching child lacking a notificator of its own. When only is
// not nil it restricts the children considered.
func CheckLazyFilters(container *Node, only func(*Node) bool) {
	if container == nil || !container.Class.IsContainer() {
		panic(fmt.Sprintf("lazy filters on %s", container.classOrNil()))
	}
	holders := &container.colls[LazyNotifications]
	for i := 0; i < holders.Len(); i++ {
		h := holders.At(i)
		if h.notify == nil {
			continue
		}
		filter := h.Filter()
		for _, k := range [...]Kind{Objects, Attributes} {
			coll := &container.colls[k]
			for j := 0; j < coll.Len(); j++ {
				child := coll.At(j)
				if only != nil && !only(child) {
					continue
				}
				if filter != "" && child.Type() != filter {
					continue
				}
				if child.RealObject().notify == nil {
					_ = h.notify(child, ObjAdd, h.notifyKey)
				}
			}
		}
	}
}

// Destroy reports ObjDestroy to every notificator in the subtree of n,
// removes n from its parent and releases it.
func (n *Node) Destroy() {
	if n == nil {
		return
	}
	n.assertValid()
	NotifyTree(n, ObjDestroy)
	if n.Parent != nil {
		_ = n.Detach()
	}
	n.destroy()
}
