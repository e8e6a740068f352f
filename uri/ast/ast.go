// Package ast provides the abstract syntax trees produced by the OData URI
// parser.
//
// The trees are closed sum types: [Resource] covers the segments of a
// resource path or member expression, [Expression] covers the common
// expression grammar, [Search] covers $search, and [ApplyItem] covers the
// transformations of an $apply pipeline. Each variant is a distinct Go type,
// so consumers branch with a type switch. Every node carries the EDM type
// resolved by the parser, or nil when the type is unknown, and renders to its
// canonical URL form with String. Parsing the canonical form yields a
// structurally equal tree.
package ast

import (
	"strings"
)

// Node represents a single node in an AST.
type Node interface {
	// String returns the canonical, unencoded URL representation of the
	// node.
	String() string
}

// joinNodes writes the string form of each node to b, separated by sep.
func joinNodes[T Node](b *strings.Builder, nodes []T, sep string) {
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(n.String())
	}
}

// pathString joins resources with slashes.
func pathString(parts []Resource) string {
	b := new(strings.Builder)
	joinNodes(b, parts, "/")
	return b.String()
}
