package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coolbeans/rulebook/pkg/config"
	"github.com/coolbeans/rulebook/pkg/markup"
)

// ErrUnmappedSection is returned for a section whose numeral cannot be resolved.
var ErrUnmappedSection = errors.New("section has no canonical numeral")

// SectionMap resolves section elements to canonical numerals.
type SectionMap struct {
	rules []config.SectionRule
}

// NewSectionMap creates a map that tries rules in order.
func NewSectionMap(rules []config.SectionRule) *SectionMap {
	return &SectionMap{rules: append([]config.SectionRule(nil), rules...)}
}

// Resolve returns the numeral for section. A numeric data-listindex
// attribute wins; otherwise the first rule whose match is a substring of
// the section id applies.
func (m *SectionMap) Resolve(section *markup.Node) (string, error) {
	if index, ok := section.Attr("data-listindex"); ok {
		index = strings.TrimSpace(index)
		if isNumeral(index) {
			return index, nil
		}
	}

	id := section.AttrOr("id", "")
	if id != "" {
		for _, rule := range m.rules {
			if strings.Contains(id, rule.Match) {
				return rule.Numeral, nil
			}
		}
	}
	return "", fmt.Errorf("%w: id %q", ErrUnmappedSection, id)
}

func isNumeral(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
