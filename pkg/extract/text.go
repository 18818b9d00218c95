package extract

import (
	"strings"

	"github.com/coolbeans/rulebook/pkg/markup"
)

// TextOptions controls how ExtractText flattens a subtree.
type TextOptions struct {
	// SkipLinks is forced on for everything below a link. Links never emit
	// link syntax, only their visible text.
	SkipLinks bool

	// ExcludeNestedLists drops <ol>/<ul> children; the numbering engine
	// handles them separately.
	ExcludeNestedLists bool
}

// ExtractText returns the visible text of n with whitespace runs collapsed
// to single spaces. Excluded nodes yield "".
func (e *Extractor) ExtractText(n *markup.Node, opts TextOptions) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	e.appendText(&sb, n, opts)
	return cleanText(sb.String())
}

func (e *Extractor) appendText(sb *strings.Builder, n *markup.Node, opts TextOptions) {
	if n.IsText() {
		sb.WriteString(n.Text())
		return
	}
	if e.IsExcluded(n) {
		return
	}

	for _, child := range n.Children() {
		if child.IsText() {
			sb.WriteString(child.Text())
			continue
		}
		if !child.IsElement("") {
			continue
		}

		switch tag := child.Tag(); {
		case tag == "ol" || tag == "ul":
			if opts.ExcludeNestedLists {
				continue
			}
			e.appendText(sb, child, opts)
		case tag == "a":
			e.appendText(sb, child, TextOptions{SkipLinks: true, ExcludeNestedLists: opts.ExcludeNestedLists})
		case tag == "p" && e.vocab.ExampleClass != "" && child.HasClass(e.vocab.ExampleClass):
			// examples are illustrative, not rule text
		default:
			// inline emphasis and block containers are transparent
			e.appendText(sb, child, opts)
		}
	}
}

// cleanText collapses whitespace runs and trims.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
