// Package query selects nodes of a configuration tree with boolean
// expressions of the expr language (github.com/expr-lang/expr).
//
// An expression is evaluated once per node with these names bound:
//
//	class    "root", "complex", "attribute" or "reference"
//	type     the node type
//	value    the node value
//	line     the line the node was read from
//	depth    the number of ancestors
//	attr(s)  the value of attribute s of a container or of the target
//	         of a reference, or ""
//	has(s)   whether the node has an attribute s
//	path()   the node path, as ir.ConstructPath with "/"
//	truth(s) whether s reads as a true setting (on, yes, true, or a
//	         non-zero number)
//
// For example
//
//	class == "complex" && type == "svc" && attr("port") matches "^80"
package query
