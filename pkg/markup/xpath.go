package markup

import (
	"fmt"

	"github.com/antchfx/xpath"
)

// Query is a compiled XPath expression evaluated against Node trees.
type Query struct {
	source string
	expr   *xpath.Expr
}

// Compile compiles an XPath expression.
func Compile(expr string) (*Query, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling xpath %q: %w", expr, err)
	}
	return &Query{source: expr, expr: compiled}, nil
}

// String returns the source expression.
func (q *Query) String() string { return q.source }

// All returns every element or text node selected from top, in document order.
// Attribute selections resolve to their owning element.
func (q *Query) All(top *Node) []*Node {
	var out []*Node
	seen := make(map[*Node]bool)
	iter := q.expr.Select(newNavigator(top))
	for iter.MoveNext() {
		nav, ok := iter.Current().(*navigator)
		if !ok || seen[nav.curr] {
			continue
		}
		seen[nav.curr] = true
		out = append(out, nav.curr)
	}
	return out
}

// First returns the first node selected from top, or nil.
func (q *Query) First(top *Node) *Node {
	iter := q.expr.Select(newNavigator(top))
	if iter.MoveNext() {
		if nav, ok := iter.Current().(*navigator); ok {
			return nav.curr
		}
	}
	return nil
}

// Select compiles expr and returns all nodes it selects from top.
func Select(top *Node, expr string) ([]*Node, error) {
	q, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return q.All(top), nil
}

// SelectFirst compiles expr and returns the first node it selects from top.
func SelectFirst(top *Node, expr string) (*Node, error) {
	q, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return q.First(top), nil
}

// navigator adapts a Node tree to xpath.NodeNavigator.
type navigator struct {
	root *Node
	curr *Node
	attr int
}

func newNavigator(top *Node) *navigator {
	return &navigator{root: top, curr: top, attr: -1}
}

func (n *navigator) NodeType() xpath.NodeType {
	switch n.curr.kind {
	case DocumentNode:
		return xpath.RootNode
	case TextNode:
		return xpath.TextNode
	default:
		if n.attr != -1 {
			return xpath.AttributeNode
		}
		return xpath.ElementNode
	}
}

func (n *navigator) LocalName() string {
	if n.attr != -1 {
		return n.curr.Attrs()[n.attr].Key
	}
	return n.curr.tag
}

func (n *navigator) Prefix() string { return "" }

func (n *navigator) Value() string {
	if n.attr != -1 {
		return n.curr.Attrs()[n.attr].Val
	}
	return n.curr.InnerText()
}

func (n *navigator) Copy() xpath.NodeNavigator {
	c := *n
	return &c
}

func (n *navigator) MoveToRoot() {
	n.curr = n.root
	n.attr = -1
}

func (n *navigator) MoveToParent() bool {
	if n.attr != -1 {
		n.attr = -1
		return true
	}
	if n.curr == n.root || n.curr.parent == nil {
		return false
	}
	n.curr = n.curr.parent
	return true
}

func (n *navigator) MoveToNextAttribute() bool {
	if n.attr >= len(n.curr.Attrs())-1 {
		return false
	}
	n.attr++
	return true
}

func (n *navigator) MoveToChild() bool {
	if n.attr != -1 || len(n.curr.children) == 0 {
		return false
	}
	n.curr = n.curr.children[0]
	return true
}

func (n *navigator) MoveToFirst() bool {
	if n.attr != -1 || n.curr == n.root || n.curr.parent == nil || n.curr.index == 0 {
		return false
	}
	n.curr = n.curr.parent.children[0]
	return true
}

func (n *navigator) MoveToNext() bool {
	if n.attr != -1 || n.curr == n.root || n.curr.parent == nil {
		return false
	}
	siblings := n.curr.parent.children
	if n.curr.index+1 >= len(siblings) {
		return false
	}
	n.curr = siblings[n.curr.index+1]
	return true
}

func (n *navigator) MoveToPrevious() bool {
	if n.attr != -1 || n.curr == n.root || n.curr.parent == nil || n.curr.index == 0 {
		return false
	}
	n.curr = n.curr.parent.children[n.curr.index-1]
	return true
}

func (n *navigator) MoveTo(other xpath.NodeNavigator) bool {
	node, ok := other.(*navigator)
	if !ok || node.root != n.root {
		return false
	}
	n.curr = node.curr
	n.attr = node.attr
	return true
}
