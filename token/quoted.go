package token

import (
	"strings"
)

// NeedsQuote reports whether v must be quoted to be read back as a single
// word.
func NeedsQuote(v string) bool {
	if v == "" {
		return true
	}
	if _, ok := keywords[v]; ok {
		return true
	}
	if strings.HasPrefix(v, "//") {
		return true
	}
	for i := 0; i < len(v); i++ {
		if !isNameByte(v[i]) {
			return true
		}
	}
	return false
}

const hexDigits = "0123456789abcdef"

// isControl reports control bytes other than tab and the line breaks,
// which have escapes of their own.
func isControl(c byte) bool {
	return (c < ' ' && c != '\t') || c == 0x7f
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func needsEscape(v string) bool {
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '\\', '"', '\n', '\v', '\f', '\r':
			return true
		}
		if isControl(v[i]) {
			return true
		}
	}
	return false
}

// Quote returns v as a double quoted string. When escapes are needed the
// string opens with a backslash, followed by a line break unless v starts
// with white space, so that multi-line values stay readable.
func Quote(v string) string {
	var b strings.Builder
	b.Grow(len(v) + 4)
	b.WriteByte('"')
	if !needsEscape(v) {
		b.WriteString(v)
		b.WriteByte('"')
		return b.String()
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch c {
		case '\v':
			b.WriteString(`\v`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if isControl(c) {
				b.WriteString(`\x`)
				b.WriteByte(hexDigits[c>>4])
				b.WriteByte(hexDigits[c&0xf])
				continue
			}
			if i == 0 {
				b.WriteByte('\\')
				if c != ' ' && c != '\t' {
					b.WriteByte('\n')
				}
			}
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Unquote decodes a double quoted string.
func Unquote(v string) (string, error) {
	if len(v) < 2 || v[0] != '"' {
		return "", ErrUnterminated
	}
	if end, err := quotedEnd([]byte(v), 0); err != nil || end != len(v) {
		return "", ErrUnterminated
	}
	return QuotedToString([]byte(v)), nil
}

// QuotedToString decodes the quoted string d, which must be well formed.
//
// A backslash before a line break joins the lines, dropping the break and
// the leading white space of the next line. \xNN yields the byte NN. A backslash before any
// character without a special meaning yields that character.
func QuotedToString(d []byte) string {
	d = d[1 : len(d)-1]
	var b strings.Builder
	b.Grow(len(d))
	for i := 0; i < len(d); i++ {
		c := d[i]
		if c != '\\' || i+1 == len(d) {
			b.WriteByte(c)
			continue
		}
		i++
		switch d[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case 'f':
			b.WriteByte('\f')
		case 'x':
			if i+2 < len(d) {
				hi, ok1 := unhex(d[i+1])
				lo, ok2 := unhex(d[i+2])
				if ok1 && ok2 {
					b.WriteByte(hi<<4 | lo)
					i += 2
					continue
				}
			}
			b.WriteByte('x')
		case '\r', '\n':
			if d[i] == '\r' && i+1 < len(d) && d[i+1] == '\n' {
				i++
			}
			for i+1 < len(d) && (d[i+1] == ' ' || d[i+1] == '\t') {
				i++
			}
		default:
			b.WriteByte(d[i])
		}
	}
	return b.String()
}
