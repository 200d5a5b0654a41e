// Package property models a character as a tree of typed property nodes.
//
// A Graph is an immutable snapshot: every structural edit returns a new Graph
// that shares untouched nodes with its predecessor. Nodes are owned by exactly
// one parent; effects reach their targets by semantic name, never by tree
// edges.
package property
