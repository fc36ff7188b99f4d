// Package encode writes configuration trees back out.
//
// [Encode] prints the configuration grammar, so that parsing its output
// yields an equal tree. [JSON] and [YAML] export a tree for tools which
// do not speak the grammar.
//
// # Usage
//
//	// print a resolved tree
//	err := encode.Encode(root, os.Stdout)
//
//	// print the children of type "svc" of a node, one per line
//	err := encode.Encode(n, os.Stdout, encode.Flatten("svc"))
package encode
