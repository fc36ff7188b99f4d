// Package resolve turns a parsed tree into a usable one: insertions are
// expanded, then references and indirect assignments are bound.
//
// Resolution of a Root is
//
//  1. [CheckLoops], which rejects insertion cycles,
//  2. insertion expansion, depth first, with each inserted container
//     resolved before it is copied,
//  3. [References], which binds every reference to its target and copies
//     the values of indirect assignments.
//
// Resolving a resolved tree changes nothing.
package resolve
