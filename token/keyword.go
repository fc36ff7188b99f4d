package token

var keywords = map[string]TokenType{
	"insert":  TInsert,
	"inherit": TInherit,
	"ref":     TRef,
	"attach":  TAttach,
}

// keywordType returns the type of a bare word.
func keywordType(d []byte) TokenType {
	if t, ok := keywords[string(d)]; ok {
		return t
	}
	return TName
}

// isNameByte reports whether c may appear in an unquoted word.
func isNameByte(c byte) bool {
	if c <= ' ' || c == 0x7f {
		return false
	}
	switch c {
	case '{', '}', ';', '=', '@', '"', '#':
		return false
	}
	return true
}
