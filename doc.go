// Package ncnf reads hierarchical configuration files into resolved
// trees and brings live trees up to date with new versions of them.
//
// A configuration is a tree of typed, named objects holding attributes
// and references to other objects:
//
//	_validator-embedded yes;
//
//	template web {
//	    port 80;
//	}
//
//	host h1 { addr 10.0.0.1; }
//
//	service www {
//	    insert template web;
//	    attach backend b = host h1;
//	    timeout @default-timeout;
//	}
//
//	default-timeout 30;
//
// [ReadFile] parses such a file, expands insertions, binds references,
// and validates the result. [Diff] merges a newly read tree into a live
// one so that notificators attached to unchanged objects survive.
//
// The packages below do the work: parse and token read the grammar, ir
// holds the tree, resolve binds it, diff merges trees, encode prints
// them, query selects nodes, and policy, asyncval and reload validate
// and reload configurations.
package ncnf
