package resolve

import "errors"

// MaxDepth bounds the insertion chain and the indirect assignment chain.
const MaxDepth = 128

var (
	// ErrSkip may be returned by a Hook before resolution to leave a
	// reference untouched.
	ErrSkip = errors.New("skip reference")
)
