package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/token"
	"go.lsp.dev/protocol"
)

func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil || doc.root == nil {
		return nil, nil
	}
	n := findNodeAtPosition(doc.root, doc.positions, int(params.Position.Line), int(params.Position.Character))
	if n == nil {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: buildHoverText(n),
		},
	}, nil
}

// findNodeAtPosition returns the node starting on line closest to col.
func findNodeAtPosition(root *ir.Node, positions map[*ir.Node]*token.Pos, line, col int) *ir.Node {
	var (
		best     *ir.Node
		bestDist int
	)
	ir.Walk(root, func(n *ir.Node) error {
		pos := positions[n]
		if pos == nil {
			return nil
		}
		l, c := pos.LineCol()
		if l != line {
			return nil
		}
		if d := abs(c - col); best == nil || d < bestDist {
			best, bestDist = n, d
		}
		return nil
	})
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func buildHoverText(n *ir.Node) string {
	parts := []string{
		fmt.Sprintf("**%s** `%s` `%s`", n.Class, n.Type(), n.Value()),
	}
	if p := n.Path(); p != "" {
		parts = append(parts, fmt.Sprintf("**Path:** `%s`", p))
	}
	switch n.Class {
	case ir.ComplexClass:
		parts = append(parts, fmt.Sprintf("%d attributes, %d objects",
			n.Attributes().Len(), n.Objects().Len()))
	case ir.ReferenceClass:
		kw := "ref"
		if n.IsAttach() {
			kw = "attach"
		}
		target := "unresolved"
		if t := n.Target(); t != nil {
			target = fmt.Sprintf("line %d", t.Line)
		}
		parts = append(parts, fmt.Sprintf("**%s** `%s %s` (%s)", kw, n.RefType(), n.RefValue(), target))
	case ir.AttributeClass:
		if n.Indirect {
			parts = append(parts, "indirect")
		}
	}
	return strings.Join(parts, "\n\n")
}
