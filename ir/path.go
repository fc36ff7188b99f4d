package ir

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// NameFunc names a node in a path. Returning false stops the path at
// that node.
type NameFunc func(*Node) (string, bool)

// ValueName names nodes by their value, stopping at the root.
func ValueName(n *Node) (string, bool) {
	if n.Class == RootClass {
		return "", false
	}
	return n.Value(), true
}

// Path is ConstructPath of n with "/" and ValueName.
func (n *Node) Path() string {
	return ConstructPath(n, "/", false, nil)
}

// ConstructPath joins the names of n and its ancestors with delim, from
// the outermost down to n, or from n up when reverse is set. A nil
// nameFunc means ValueName.
func ConstructPath(n *Node, delim string, reverse bool, nameFunc NameFunc) string {
	if nameFunc == nil {
		nameFunc = ValueName
	}
	var names []string
	for o := n; o != nil; o = o.Parent {
		name, ok := nameFunc(o)
		if !ok {
			break
		}
		names = append(names, name)
	}
	if !reverse {
		slices.Reverse(names)
	}
	return strings.Join(names, delim)
}

// ResolvePath finds the object of root reached by following the value
// names of path, split on delim. A reversed path lists the innermost name
// first, as ConstructPath does with reverse set.
func ResolvePath(root *Node, path, delim string, reverse bool) (*Node, error) {
	if root == nil || root.Class != RootClass || path == "" || delim == "" {
		return nil, ErrInvalid
	}
	names := strings.Split(path, delim)
	if reverse {
		slices.Reverse(names)
	}
	cur := root
	for _, name := range names {
		next, err := cur.GetObj("", name, FirstObject, GetNoFlags)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
		cur = next
	}
	return cur, nil
}

// FindFilter decides whether FindObjects considers n. A true skip drops
// n; an error aborts the search.
type FindFilter func(n *Node) (skip bool, err error)

// FindObjects collects the objects reached from start by following
// types, a "/" separated list of object types, into an Iterator. The
// filter is consulted at every level. It returns ErrNotFound when
// nothing is reached.
func FindObjects(start *Node, types string, filter FindFilter) (*Node, error) {
	if start == nil {
		return nil, ErrInvalid
	}
	var tt []string
	for t := range strings.SplitSeq(types, "/") {
		if t != "" {
			tt = append(tt, t)
		}
	}
	if len(tt) == 0 {
		return nil, ErrInvalid
	}
	res := NewIterator()
	if err := findObjects(start, tt, filter, res); err != nil {
		res.Release()
		return nil, err
	}
	if res.Len() == 0 {
		res.Release()
		return nil, ErrNotFound
	}
	return res, nil
}

func findObjects(level *Node, tt []string, filter FindFilter, res *Node) error {
	if !level.RealObject().Class.IsContainer() {
		return nil
	}
	it, err := level.GetObj(tt[0], "", IterObjects, GetNoFlags)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	defer it.Release()
	for obj := it.Next(); obj != nil; obj = it.Next() {
		if filter != nil {
			skip, err := filter(obj)
			if err != nil {
				return err
			}
			if skip {
				continue
			}
		}
		if len(tt) == 1 {
			res.iter.coll.entries = append(res.iter.coll.entries, entry{obj: obj})
			continue
		}
		if err := findObjects(obj, tt[1:], filter, res); err != nil {
			return err
		}
	}
	return nil
}
