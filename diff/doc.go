// Package diff merges a new configuration tree into a live one in place.
//
// [Merge] keeps every node of the old tree that is unchanged in the new
// one, so that notificators and user data attached to it survive, adds
// copies of new nodes, and removes the nodes the new tree lacks. Nodes
// with notificators receive [ir.ObjChange] or [ir.ObjDestroy]; lazy
// notificators learn of added children. When the merge cannot complete
// the old tree is restored as it was.
//
// [Text] and [MergePatch] are tooling helpers comparing two renderings
// of a tree.
package diff
