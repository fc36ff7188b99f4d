package main

import (
	"context"
	"slices"
	"strings"

	"github.com/signadot/ncnf/ir"
	"go.lsp.dev/protocol"
)

var keywords = []string{"ref", "attach", "insert", "inherit"}

func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil {
		return nil, nil
	}
	off := lineColToOffset(doc.content, int(params.Position.Line), int(params.Position.Character))
	return &protocol.CompletionList{
		Items: completions(doc.root, statementBefore(doc.content[:off])),
	}, nil
}

// statementBefore returns the words of the statement the cursor is in,
// up to the cursor, the last one possibly partial.
func statementBefore(s string) []string {
	if i := strings.LastIndexAny(s, ";{}"); i >= 0 {
		s = s[i+1:]
	}
	words := strings.Fields(s)
	if len(s) > 0 && strings.ContainsAny(s[len(s)-1:], " \t\r\n") {
		words = append(words, "")
	}
	return words
}

func completions(root *ir.Node, words []string) []protocol.CompletionItem {
	items := []protocol.CompletionItem{}
	var prefix, prev string
	if len(words) > 0 {
		prefix = words[len(words)-1]
	}
	if len(words) > 1 {
		prev = words[len(words)-2]
	}
	switch {
	case len(words) <= 1:
		for _, kw := range keywords {
			if strings.HasPrefix(kw, prefix) {
				items = append(items, protocol.CompletionItem{
					Label:      kw,
					Kind:       protocol.CompletionItemKindKeyword,
					InsertText: kw + " ",
				})
			}
		}
		for _, t := range docTypes(root, false) {
			if strings.HasPrefix(t, prefix) {
				items = append(items, protocol.CompletionItem{Label: t, Kind: protocol.CompletionItemKindProperty})
			}
		}
	case prev == "insert" || prev == "inherit" || prev == "=":
		for _, t := range docTypes(root, true) {
			if strings.HasPrefix(t, prefix) {
				items = append(items, protocol.CompletionItem{Label: t, Kind: protocol.CompletionItemKindClass})
			}
		}
	}
	return items
}

// docTypes lists the types used in root, only those of complex objects
// if complexOnly is set.
func docTypes(root *ir.Node, complexOnly bool) []string {
	if root == nil {
		return nil
	}
	seen := map[string]bool{}
	ir.Walk(root, func(n *ir.Node) error {
		if n.Class == ir.RootClass || (complexOnly && n.Class != ir.ComplexClass) {
			return nil
		}
		seen[n.Type()] = true
		return nil
	})
	res := make([]string, 0, len(seen))
	for t := range seen {
		res = append(res, t)
	}
	slices.Sort(res)
	return res
}
