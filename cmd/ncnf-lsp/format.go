package main

import (
	"context"
	"strings"

	"github.com/signadot/ncnf/encode"
	"github.com/signadot/ncnf/parse"
	"go.lsp.dev/protocol"
)

// Formatting re-encodes the parsed, unresolved document. Comments are
// not kept.
func (s *Server) Formatting(ctx context.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil {
		return nil, nil
	}
	formatted, ok := format(doc.content, int(params.Options.TabSize))
	if !ok || formatted == doc.content {
		return []protocol.TextEdit{}, nil
	}
	lines := strings.Count(doc.content, "\n")
	if len(doc.content) > 0 && doc.content[len(doc.content)-1] != '\n' {
		lines++
	}
	return []protocol.TextEdit{
		{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: uint32(lines), Character: 0},
			},
			NewText: formatted,
		},
	}, nil
}

func format(content string, indent int) (string, bool) {
	root, err := parse.ParseString(content)
	if err != nil {
		return "", false
	}
	defer root.Destroy()
	var opts []encode.EncodeOption
	if indent > 0 {
		opts = append(opts, encode.Indent(indent))
	}
	var b strings.Builder
	if err := encode.Encode(root, &b, opts...); err != nil {
		return "", false
	}
	return strings.TrimRight(b.String(), "\n") + "\n", true
}
