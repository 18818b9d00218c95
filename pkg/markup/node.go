// Package markup provides the read-only document tree the rulebook extractor
// walks. Trees are built once by Parse and never mutated afterwards.
package markup

import "strings"

// NodeType identifies the kind of a Node.
type NodeType int

const (
	// DocumentNode is the root of a parsed document.
	DocumentNode NodeType = iota
	// ElementNode is a tag such as <ol> or <li>.
	ElementNode
	// TextNode is a leaf holding character data.
	TextNode
)

// String returns the string representation of a NodeType.
func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	default:
		return "unknown"
	}
}

// Attr is a single element attribute.
type Attr struct {
	Key string
	Val string
}

// Node is a document element or text leaf.
//
// The parent pointer is non-owning and only used for ancestor lookups.
type Node struct {
	kind     NodeType
	tag      string
	text     string
	attrs    []Attr
	classes  []string
	children []*Node
	parent   *Node
	index    int
}

// Type returns the node kind.
func (n *Node) Type() NodeType { return n.kind }

// Tag returns the lower-cased element name, or "" for text and document nodes.
func (n *Node) Tag() string { return n.tag }

// Text returns the character data of a text leaf.
func (n *Node) Text() string { return n.text }

// Parent returns the enclosing node, or nil at the document root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the ordered child nodes.
func (n *Node) Children() []*Node { return n.children }

// Attrs returns the element attributes in source order.
func (n *Node) Attrs() []Attr { return n.attrs }

// Classes returns the ordered class set.
func (n *Node) Classes() []string { return n.classes }

// IsElement reports whether n is an element with the given tag.
// An empty tag matches any element.
func (n *Node) IsElement(tag string) bool {
	if n == nil || n.kind != ElementNode {
		return false
	}
	return tag == "" || n.tag == tag
}

// IsText reports whether n is a text leaf.
func (n *Node) IsText() bool {
	return n != nil && n.kind == TextNode
}

// Attr returns the value of the named attribute and whether it was present.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute value or def when absent.
func (n *Node) AttrOr(key, def string) string {
	if v, ok := n.Attr(key); ok {
		return v
	}
	return def
}

// HasAttr reports whether the named attribute is present.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.Attr(key)
	return ok
}

// Style returns the raw inline style declaration.
func (n *Node) Style() string {
	return n.AttrOr("style", "")
}

// HasClass reports whether the class set contains class.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.classes {
		if c == class {
			return true
		}
	}
	return false
}

// ChildElements returns the direct element children with the given tag.
// An empty tag returns every element child.
func (n *Node) ChildElements(tag string) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.IsElement(tag) {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildElement returns the first direct element child with the given tag.
func (n *Node) FirstChildElement(tag string) *Node {
	for _, c := range n.children {
		if c.IsElement(tag) {
			return c
		}
	}
	return nil
}

// Find returns the first descendant element (pre-order, self excluded)
// with the given tag.
func (n *Node) Find(tag string) *Node {
	return n.FindFunc(func(d *Node) bool { return d.IsElement(tag) })
}

// FindFunc returns the first descendant (pre-order, self excluded) for which
// match returns true.
func (n *Node) FindFunc(match func(*Node) bool) *Node {
	for _, c := range n.children {
		if match(c) {
			return c
		}
		if found := c.FindFunc(match); found != nil {
			return found
		}
	}
	return nil
}

// Descendants returns every descendant element with the given tag in
// document order. An empty tag returns every descendant element.
func (n *Node) Descendants(tag string) []*Node {
	var out []*Node
	n.walk(func(d *Node) {
		if d.IsElement(tag) {
			out = append(out, d)
		}
	})
	return out
}

func (n *Node) walk(visit func(*Node)) {
	for _, c := range n.children {
		visit(c)
		c.walk(visit)
	}
}

// InnerText returns the raw concatenation of every descendant text leaf.
func (n *Node) InnerText() string {
	if n.kind == TextNode {
		return n.text
	}
	var sb strings.Builder
	n.walk(func(d *Node) {
		if d.kind == TextNode {
			sb.WriteString(d.text)
		}
	})
	return sb.String()
}

// Root returns the top of the tree n belongs to.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}
