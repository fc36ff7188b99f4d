package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/signadot/ncnf/debug"
	"github.com/signadot/ncnf/ir"
)

// Env is the environment an expression sees for one node.
type Env struct {
	Class string              `expr:"class"`
	Type  string              `expr:"type"`
	Value string              `expr:"value"`
	Line  int                 `expr:"line"`
	Depth int                 `expr:"depth"`
	Attr  func(string) string `expr:"attr"`
	Has   func(string) bool   `expr:"has"`
	Path  func() string       `expr:"path"`
}

func newEnv(n *ir.Node) Env {
	return Env{
		Class: strings.ToLower(n.Class.String()),
		Type:  n.Type(),
		Value: n.Value(),
		Line:  n.Line,
		Depth: n.Depth(),
		Attr: func(name string) string {
			if n.Class == ir.AttributeClass {
				return ""
			}
			v, _ := n.GetAttr(name)
			return v
		},
		Has: func(name string) bool {
			if n.Class == ir.AttributeClass {
				return false
			}
			_, err := n.GetAttr(name)
			return err == nil
		},
		Path: n.Path,
	}
}

func exprOpts() []expr.Option {
	return []expr.Option{
		expr.Env(Env{}),
		expr.AsBool(),
		expr.Function("truth", func(params ...any) (any, error) {
			s := params[0].(string)
			if v, ok := ir.Truth(s); ok {
				return v, nil
			}
			i, err := strconv.ParseFloat(s, 64)
			return err == nil && i != 0, nil
		},
			new(func(string) bool)),
	}
}

type Query struct {
	src string
	prg *vm.Program
}

// Compile parses and type checks src, which must yield a boolean.
func Compile(src string) (*Query, error) {
	prg, err := expr.Compile(src, exprOpts()...)
	if err != nil {
		return nil, fmt.Errorf("%w: query %q: %w", ir.ErrFormat, src, err)
	}
	return &Query{src: src, prg: prg}, nil
}

// MustCompile is Compile panicking on error.
func MustCompile(src string) *Query {
	q, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return q
}

func (q *Query) String() string {
	return q.src
}

// Match evaluates q for n.
func (q *Query) Match(n *ir.Node) (bool, error) {
	if n == nil {
		return false, ir.ErrInvalid
	}
	res, err := expr.Run(q.prg, newEnv(n))
	if err != nil {
		return false, fmt.Errorf("query %q at %s: %w", q.src, n, err)
	}
	ok, _ := res.(bool)
	if debug.Query() {
		debug.Logf("query %q at %s: %t\n", q.src, n, ok)
	}
	return ok, nil
}

// Select returns the nodes at or below n matching q, in walk order.
func (q *Query) Select(n *ir.Node) ([]*ir.Node, error) {
	if n == nil {
		return nil, ir.ErrInvalid
	}
	var res []*ir.Node
	err := ir.Walk(n, func(c *ir.Node) error {
		ok, err := q.Match(c)
		if err != nil {
			return err
		}
		if ok {
			res = append(res, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Mark sets the Mark of every node Select returns to mark and reports
// how many there were.
func (q *Query) Mark(n *ir.Node, mark int) (int, error) {
	sel, err := q.Select(n)
	if err != nil {
		return 0, err
	}
	for _, c := range sel {
		c.Mark = mark
	}
	return len(sel), nil
}

// DescendantsOf extends sel with the subtrees of its nodes, keeping the
// first occurrence of each node.
func DescendantsOf(sel []*ir.Node) []*ir.Node {
	seen := make(map[*ir.Node]bool, len(sel))
	res := make([]*ir.Node, 0, len(sel))
	for _, n := range sel {
		ir.Walk(n, func(c *ir.Node) error {
			if seen[c] {
				return ir.ErrSkipChildren
			}
			seen[c] = true
			res = append(res, c)
			return nil
		})
	}
	return res
}

// MarkTree sets the Mark of n, its ancestors and its descendants to
// mark, so that a marked-only dump shows n in context.
func MarkTree(n *ir.Node, mark int) {
	for p := n.Parent; p != nil; p = p.Parent {
		p.Mark = mark
	}
	ir.Walk(n, func(c *ir.Node) error {
		c.Mark = mark
		return nil
	})
}
