package main

import (
	"context"
	"unicode/utf8"

	"github.com/signadot/ncnf/encode"
	"github.com/signadot/ncnf/token"
	"go.lsp.dev/protocol"
)

// tokenTypes is the legend announced in Initialize.
var tokenTypes = []protocol.SemanticTokenTypes{
	protocol.SemanticTokenComment,
	protocol.SemanticTokenKeyword,
	protocol.SemanticTokenString,
	protocol.SemanticTokenOperator,
	protocol.SemanticTokenProperty,
}

var tokenModifiers = []protocol.SemanticTokenModifiers{
	protocol.SemanticTokenModifierDefinition,
}

func mapColorToSemanticTokenType(attr encode.ColorAttr) protocol.SemanticTokenTypes {
	switch attr {
	case encode.CommentColor:
		return protocol.SemanticTokenComment
	case encode.KeywordColor:
		return protocol.SemanticTokenKeyword
	case encode.TypeColor:
		return protocol.SemanticTokenProperty
	case encode.SepColor:
		return protocol.SemanticTokenOperator
	default:
		return protocol.SemanticTokenString
	}
}

// colorTokens gives each token the attribute the encoder colors it with.
// The first word of a statement, and the first after a keyword or '=',
// is a type; other words are values.
func colorTokens(toks []token.Token) []encode.ColorAttr {
	res := make([]encode.ColorAttr, len(toks))
	wantType := true
	for i := range toks {
		switch t := toks[i].Type; {
		case t == token.TComment:
			res[i] = encode.CommentColor
		case t.IsKeyword():
			res[i] = encode.KeywordColor
			wantType = true
		case t == token.TName || t == token.TString:
			if wantType {
				res[i] = encode.TypeColor
				wantType = false
			} else {
				res[i] = encode.ValueColor
			}
		default:
			res[i] = encode.SepColor
			wantType = t != token.TAt
		}
	}
	return res
}

// collectSemanticTokens encodes the tokens of content relative to one
// another, as LSP requires. Tokens spanning lines are cut at the end of
// their first line.
func collectSemanticTokens(content string) []uint32 {
	toks, err := token.Tokenize(nil, []byte(content), token.TokenizeComments(true))
	if err != nil {
		return nil
	}
	typeIndex := map[protocol.SemanticTokenTypes]uint32{}
	for i, tt := range tokenTypes {
		typeIndex[tt] = uint32(i)
	}
	colors := colorTokens(toks)
	data := make([]uint32, 0, 5*len(toks))
	var prevLine, prevChar uint32
	for i := range toks {
		tk := &toks[i]
		line, _ := tk.Pos.LineCol()
		lineStart := lineColToOffset(content, line, 0)
		char := uint32(utf8.RuneCountInString(content[lineStart:tk.Pos.I]))
		text := tk.Bytes
		for j, c := range text {
			if c == '\n' {
				text = text[:j]
				break
			}
		}
		mods := uint32(0)
		// the type of a complex object
		if colors[i] == encode.TypeColor && i+2 < len(toks) && toks[i+2].Type == token.TLCurl {
			mods |= 1
		}
		deltaLine := uint32(line) - prevLine
		deltaChar := char
		if deltaLine == 0 {
			deltaChar = char - prevChar
		}
		data = append(data, deltaLine, deltaChar, uint32(utf8.RuneCount(text)),
			typeIndex[mapColorToSemanticTokenType(colors[i])], mods)
		prevLine, prevChar = uint32(line), char
	}
	return data
}

func (s *Server) SemanticTokensFull(ctx context.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}
	return &protocol.SemanticTokens{Data: collectSemanticTokens(doc.content)}, nil
}

// SemanticTokensRange answers with the tokens of the whole document.
func (s *Server) SemanticTokensRange(ctx context.Context, params *protocol.SemanticTokensRangeParams) (*protocol.SemanticTokens, error) {
	doc := s.docs.get(string(params.TextDocument.URI))
	if doc == nil {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}
	return &protocol.SemanticTokens{Data: collectSemanticTokens(doc.content)}, nil
}
