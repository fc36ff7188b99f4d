package token

import (
	"unicode/utf8"

	"github.com/signadot/ncnf/debug"
)

// Tokenize appends the tokens of src to dst.
func Tokenize(dst []Token, src []byte, opts ...TokenOpt) ([]Token, error) {
	opt := &tkOpts{}
	for _, o := range opts {
		o(opt)
	}
	pd := NewPosDoc(src)
	n := len(src)
	i := 0
	for i < n {
		c := src[i]
		start := i
		var tt TokenType
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v':
			i++
			continue
		case c == '#' || (c == '/' && i+1 < n && src[i+1] == '/'):
			i = commentEnd(src, i)
			if !opt.comments {
				continue
			}
			tt = TComment
		case c == '{':
			tt, i = TLCurl, i+1
		case c == '}':
			tt, i = TRCurl, i+1
		case c == ';':
			tt, i = TSemi, i+1
		case c == '=':
			tt, i = TEq, i+1
		case c == '@':
			tt, i = TAt, i+1
		case c == '"':
			end, err := quotedEnd(src, i)
			if err != nil {
				return nil, NewError(err, pd.Pos(i))
			}
			tt, i = TString, end
		case isNameByte(c):
			for i < n && isNameByte(src[i]) {
				i++
			}
			if !utf8.Valid(src[start:i]) {
				return nil, NewError(ErrBadUTF8, pd.Pos(start))
			}
			tt = keywordType(src[start:i])
		default:
			r, _ := utf8.DecodeRune(src[i:])
			return nil, UnexpectedErr(string(r), pd.Pos(i))
		}
		dst = append(dst, Token{Type: tt, Pos: pd.Pos(start), Bytes: src[start:i]})
	}
	if debug.Parse() {
		PrintTokens(dst, "tokenize")
	}
	return dst, nil
}

func commentEnd(d []byte, i int) int {
	for i < len(d) && d[i] != '\n' {
		i++
	}
	return i
}

// quotedEnd returns the offset just past the quoted string starting at
// d[i].
func quotedEnd(d []byte, i int) (int, error) {
	n := len(d)
	for i++; i < n; i++ {
		switch d[i] {
		case '\\':
			i++
		case '"':
			return i + 1, nil
		}
	}
	return 0, ErrUnterminated
}
