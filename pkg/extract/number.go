package extract

import (
	"fmt"
	"strings"
)

// RuleNumber is a dotted hierarchical identifier:
// section[.subsection].rule[.subrule...].
type RuleNumber struct {
	Section    string `json:"section"`
	Subsection string `json:"subsection,omitempty"`
	Rule       int    `json:"rule"`
	Path       []int  `json:"path,omitempty"`
}

// String formats the number; every component after the section is
// zero-padded to two digits.
func (n RuleNumber) String() string {
	parts := make([]string, 0, 3+len(n.Path))
	parts = append(parts, n.Section)
	if n.Subsection != "" {
		parts = append(parts, n.Subsection)
	}
	parts = append(parts, fmt.Sprintf("%02d", n.Rule))
	for _, sub := range n.Path {
		parts = append(parts, fmt.Sprintf("%02d", sub))
	}
	return strings.Join(parts, ".")
}

// Depth returns the number of components after the section.
func (n RuleNumber) Depth() int {
	depth := 1 + len(n.Path)
	if n.Subsection != "" {
		depth++
	}
	return depth
}

// Position is the numbering context of a list item. A zero Rule on an
// unnumbered position means no rule counter applies (top-level intros,
// subsection intros).
type Position struct {
	Section    string
	Subsection string
	Rule       int
	Path       []int

	// Numbered is set once an item has been emitted under this position's
	// number. Intros nested below it always take a 00 component of their own.
	Numbered bool
}

// Number returns the regular rule number at p.
func (p Position) Number() RuleNumber {
	return RuleNumber{
		Section:    p.Section,
		Subsection: p.Subsection,
		Rule:       p.Rule,
		Path:       append([]int(nil), p.Path...),
	}
}

// Child returns the position of the k-th numbered item in a list nested at p.
func (p Position) Child(k int) Position {
	path := make([]int, len(p.Path), len(p.Path)+1)
	copy(path, p.Path)
	p.Path = append(path, k)
	return p
}

// Intro returns the position an intro item nested at p occupies, and whether
// that position is numbered. The intro takes the sentinel component 00 in
// place of its own index; with no rule counter in play and no number yet
// emitted, the 00 is the rule component itself, which is only numbered
// inside a subsection or in section 0.
func (p Position) Intro() (Position, bool) {
	if !p.Numbered && p.Rule == 0 && len(p.Path) == 0 {
		return p, p.Subsection != "" || p.Section == "0"
	}
	return p.Child(0), true
}
