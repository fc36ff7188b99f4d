package diff

import (
	"log/slog"

	"github.com/signadot/ncnf/ir"
)

type mergeOpts struct {
	cloneHook func(*ir.Node) error
	log       *slog.Logger
	onDelta   func(*ir.Node, Delta)
}

type MergeOption func(*mergeOpts)

// WithCloneHook calls hook before each node of the new tree is copied
// into the old one. An error aborts the merge, which is then rolled back
// and reports the error wrapped with ir.ErrNoMem.
func WithCloneHook(hook func(orig *ir.Node) error) MergeOption {
	return func(o *mergeOpts) { o.cloneHook = hook }
}

// WithLogger reports a summary of each merge at debug level.
func WithLogger(l *slog.Logger) MergeOption {
	return func(o *mergeOpts) { o.log = l }
}

// OnDelta calls fn for every added, changed or deleted node of a
// successful merge, before deleted nodes are removed.
func OnDelta(fn func(n *ir.Node, d Delta)) MergeOption {
	return func(o *mergeOpts) { o.onDelta = fn }
}
