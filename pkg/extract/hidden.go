package extract

import (
	"regexp"

	"github.com/coolbeans/rulebook/pkg/markup"
)

var displayNonePattern = regexp.MustCompile(`(?i)display\s*:\s*none`)

// IsHidden reports whether n or any of its ancestors is styled display:none.
func IsHidden(n *markup.Node) bool {
	if n == nil {
		return false
	}
	if n.IsElement("") && displayNonePattern.MatchString(n.Style()) {
		return true
	}
	return IsHidden(n.Parent())
}

// IsExcluded reports whether n is hidden or carries the exclusion class.
// Excluded nodes are pruned together with their subtree.
func (e *Extractor) IsExcluded(n *markup.Node) bool {
	if IsHidden(n) {
		return true
	}
	return e.vocab.ExcludeClass != "" && n.HasClass(e.vocab.ExcludeClass)
}
