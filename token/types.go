package token

import "fmt"

type TokenType int

const (
	TName TokenType = iota
	TString
	TAt
	TSemi
	TLCurl
	TRCurl
	TEq
	TInsert
	TInherit
	TRef
	TAttach
	TComment
)

func (t TokenType) String() string {
	return map[TokenType]string{
		TName:    "TName",
		TString:  "TString",
		TAt:      "TAt",
		TSemi:    "TSemi",
		TLCurl:   "TLCurl",
		TRCurl:   "TRCurl",
		TEq:      "TEq",
		TInsert:  "TInsert",
		TInherit: "TInherit",
		TRef:     "TRef",
		TAttach:  "TAttach",
		TComment: "TComment",
	}[t]
}

// IsKeyword reports whether t is one of the statement keywords.
func (t TokenType) IsKeyword() bool {
	switch t {
	case TInsert, TInherit, TRef, TAttach:
		return true
	default:
		return false
	}
}

type Token struct {
	Type  TokenType
	Pos   *Pos
	Bytes []byte
}

func (t *Token) Info() string {
	return fmt.Sprintf("%s %s", t.Type, t.Pos.String())
}

// String returns the value of the token, decoding quoted strings.
func (t *Token) String() string {
	switch t.Type {
	case TString:
		return QuotedToString(t.Bytes)
	default:
		return string(t.Bytes)
	}
}

// End returns the offset just past the token.
func (t *Token) End() int {
	return t.Pos.I + len(t.Bytes)
}

type TokenOpt func(*tkOpts)

type tkOpts struct {
	comments bool
}

// TokenizeComments makes Tokenize report comments as TComment tokens
// instead of dropping them.
func TokenizeComments(v bool) TokenOpt {
	return func(o *tkOpts) { o.comments = v }
}
