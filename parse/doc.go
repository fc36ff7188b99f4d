// Package parse reads the ncnf configuration grammar into an unresolved
// [ir.Node] tree.
//
// # Usage
//
//	root, err := parse.Parse(data, parse.Filename("/etc/app.conf"))
//	if err != nil {
//	    return err
//	}
//
// The returned root still holds insertions, unresolved references and
// indirect assignments; see package resolve.
//
// # Grammar
//
//	file  := stmt*
//	stmt  := type value '{' stmt* '}' [';']
//	       | type value ';'
//	       | type '@' value ';'
//	       | ('ref' | 'attach') type value '=' type value ';'
//	       | ('insert' | 'inherit') type [value] ';'
//	value := word | string
//
// Comments start with '#' or '//' and run to the end of the line.
package parse
