package parse

import (
	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/token"
)

type parseOpts struct {
	relaxed   bool
	positions map[*ir.Node]*token.Pos
	filename  string
}

type ParseOption func(*parseOpts)

// Relaxed turns off duplicate checking when nodes are attached.
func Relaxed() ParseOption {
	return func(o *parseOpts) { o.relaxed = true }
}

// ParsePositions records the position of the first token of each node
// in m.
func ParsePositions(m map[*ir.Node]*token.Pos) ParseOption {
	return func(o *parseOpts) {
		o.positions = m
	}
}

// Filename names the source in errors.
func Filename(name string) ParseOption {
	return func(o *parseOpts) { o.filename = name }
}
