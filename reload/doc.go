// Package reload keeps a live configuration tree in step with its file.
//
// A [Reloader] owns the tree. Each reload reads the file afresh and
// merges it into the live tree, so notificators attached to unchanged
// objects keep working and see ObjChange and ObjDestroy events for the
// rest. A reload that fails leaves the live tree as it was.
package reload
