// Package token provides tokenization support for the ncnf configuration
// grammar.
//
// [Tokenize] turns source bytes into a flat [Token] slice. Quoted values
// are kept in their source form; [Token.String] and [Unquote] decode them
// and [Quote] produces the form the dump printer writes.
package token
