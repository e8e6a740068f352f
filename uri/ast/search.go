package ast

import "strings"

// Search is a node of a $search expression. The variants are *SearchTerm,
// *SearchUnary and *SearchBinary.
type Search interface {
	Node
	searchPriority() int
}

const (
	searchPriorityOr = iota + 1
	searchPriorityAnd
	searchPriorityNot
	searchPriorityTerm
)

// SearchTerm is a search word or a double-quoted phrase.
type SearchTerm struct {
	Text   string
	Phrase bool
}

func (*SearchTerm) searchPriority() int { return searchPriorityTerm }

// String returns the word, or the phrase quoted and escaped.
func (n *SearchTerm) String() string {
	if !n.Phrase {
		return n.Text
	}
	b := new(strings.Builder)
	b.WriteByte('"')
	for _, r := range n.Text {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// SearchUnary negates a search expression.
type SearchUnary struct {
	Operand Search
}

func (*SearchUnary) searchPriority() int { return searchPriorityNot }

// String returns "NOT operand".
func (n *SearchUnary) String() string {
	return "NOT " + searchOperand(n.Operand, searchPriorityNot)
}

// SearchOperator is a binary search operator.
type SearchOperator int

//revive:disable:exported
const (
	SearchAnd SearchOperator = iota // AND
	SearchOr                        // OR
)

// String returns the operator keyword.
func (op SearchOperator) String() string {
	if op == SearchOr {
		return "OR"
	}
	return "AND"
}

// SearchBinary combines two search expressions. Adjacent terms without an
// operator parse as SearchAnd.
type SearchBinary struct {
	Operator SearchOperator
	Left     Search
	Right    Search
}

func (n *SearchBinary) searchPriority() int {
	if n.Operator == SearchOr {
		return searchPriorityOr
	}
	return searchPriorityAnd
}

// String returns the infix form with explicit operators.
func (n *SearchBinary) String() string {
	p := n.searchPriority()
	return searchOperand(n.Left, p) + " " + n.Operator.String() + " " + searchOperand(n.Right, p+1)
}

func searchOperand(n Search, minPriority int) string {
	if n.searchPriority() < minPriority {
		return "(" + n.String() + ")"
	}
	return n.String()
}

// SearchOption is the parsed value of $search.
type SearchOption struct {
	Expression Search
}

// String returns the canonical search expression.
func (o *SearchOption) String() string { return o.Expression.String() }
