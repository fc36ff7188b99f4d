// Package policy checks resolved configuration trees against rules
// beyond what the grammar enforces.
//
// Embedded policies are compiled in and enabled by the configuration
// itself through the root attribute "_validator-embedded". Policy N can
// then be turned off with `_validator-policy-N-disable "yes";`.
//
// Rule files are YAML documents named by the root attribute
// "_validator-rules":
//
//	rules:
//	  - type: svc
//	    require: [port]
//	    unique: [port]
//	    expr: 'truth(attr("enabled")) || !has("port")'
//	    message: disabled services must not listen
//
// Each rule applies to the objects of its type anywhere in the tree.
// Expressions are those of package query.
package policy
