package markup

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// skippedTags never contribute content to a rulebook.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
}

// Parse reads an HTML document and returns its immutable tree.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return convert(doc, nil, 0), nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

func convert(hn *html.Node, parent *Node, index int) *Node {
	n := &Node{parent: parent, index: index}

	switch hn.Type {
	case html.DocumentNode:
		n.kind = DocumentNode
	case html.TextNode:
		n.kind = TextNode
		n.text = hn.Data
		return n
	default:
		n.kind = ElementNode
		n.tag = strings.ToLower(hn.Data)
		n.attrs = make([]Attr, 0, len(hn.Attr))
		for _, a := range hn.Attr {
			key := strings.ToLower(a.Key)
			n.attrs = append(n.attrs, Attr{Key: key, Val: a.Val})
			if key == "class" {
				n.classes = strings.Fields(a.Val)
			}
		}
	}

	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if !keep(c) {
			continue
		}
		n.children = append(n.children, convert(c, n, len(n.children)))
	}
	return n
}

// keep drops comments, doctypes and non-content elements.
func keep(hn *html.Node) bool {
	switch hn.Type {
	case html.TextNode, html.DocumentNode:
		return true
	case html.ElementNode:
		return !skippedTags[strings.ToLower(hn.Data)]
	default:
		return false
	}
}
