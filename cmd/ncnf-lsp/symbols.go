package main

import (
	"context"

	"github.com/signadot/ncnf/ir"
	"github.com/signadot/ncnf/token"
	"go.lsp.dev/protocol"
)

func (s *Server) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil || doc.root == nil {
		return nil, nil
	}
	var res []interface{}
	for _, sym := range documentSymbols(doc, doc.root) {
		res = append(res, sym)
	}
	return res, nil
}

// documentSymbols lists the attributes and objects of c that appear in
// the document text; copies made by insertions have no position and are
// left out.
func documentSymbols(doc *document, c *ir.Node) []protocol.DocumentSymbol {
	var res []protocol.DocumentSymbol
	for _, k := range [...]ir.Kind{ir.Attributes, ir.Objects} {
		coll := c.Collection(k)
		for i := 0; i < coll.Len(); i++ {
			n := coll.At(i)
			pos := doc.positions[n]
			if pos == nil {
				continue
			}
			r := lineRange(doc.content, pos)
			sym := protocol.DocumentSymbol{
				Name:           n.Type() + " " + n.Value(),
				Kind:           symbolKind(n),
				Range:          r,
				SelectionRange: r,
			}
			switch n.Class {
			case ir.ComplexClass:
				sym.Children = documentSymbols(doc, n)
			case ir.ReferenceClass:
				sym.Detail = n.RefType() + " " + n.RefValue()
			}
			res = append(res, sym)
		}
	}
	return res
}

func symbolKind(n *ir.Node) protocol.SymbolKind {
	switch n.Class {
	case ir.ComplexClass:
		return protocol.SymbolKindObject
	case ir.ReferenceClass:
		return protocol.SymbolKindField
	default:
		return protocol.SymbolKindProperty
	}
}

// lineRange spans from pos to the end of its line.
func lineRange(content string, pos *token.Pos) protocol.Range {
	line, _ := pos.LineCol()
	start := lineColToOffset(content, line, 0)
	col := len([]rune(content[start:pos.I]))
	return protocol.Range{
		Start: protocol.Position{Line: uint32(line), Character: uint32(col)},
		End:   protocol.Position{Line: uint32(line), Character: uint32(lineLen(content, line))},
	}
}

// Definition goes from a reference to the object it is bound to.
func (s *Server) Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil || doc.root == nil {
		return nil, nil
	}
	n := findNodeAtPosition(doc.root, doc.positions, int(params.Position.Line), int(params.Position.Character))
	if n == nil || n.Class != ir.ReferenceClass || n.Target() == nil {
		return nil, nil
	}
	pos := doc.positions[n.Target()]
	if pos == nil {
		return nil, nil
	}
	return []protocol.Location{{
		URI:   protocol.DocumentURI(doc.uri),
		Range: lineRange(doc.content, pos),
	}}, nil
}
