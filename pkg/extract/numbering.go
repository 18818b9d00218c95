package extract

import (
	"strings"

	"github.com/coolbeans/rulebook/pkg/markup"
)

// RuleLine is one emitted rule: an optional number, its text and the
// cross-references annotated on it.
type RuleLine struct {
	Number    *RuleNumber      `json:"number,omitempty"`
	Text      string           `json:"text"`
	CrossRefs []CrossReference `json:"cross_refs,omitempty"`
	Intro     bool             `json:"intro,omitempty"`
}

// Empty reports whether the line has nothing to emit.
func (l RuleLine) Empty() bool {
	return l.Text == "" && len(l.CrossRefs) == 0
}

// String renders "<number> <text> <crossrefs>", omitting empty parts.
func (l RuleLine) String() string {
	parts := make([]string, 0, 3)
	if l.Number != nil {
		parts = append(parts, l.Number.String())
	}
	if l.Text != "" {
		parts = append(parts, l.Text)
	}
	if refs := joinCrossRefs(l.CrossRefs); refs != "" {
		parts = append(parts, refs)
	}
	return strings.Join(parts, " ")
}

// ProcessItem numbers a regular or intro item at pos and recurses into its
// nested list. The recursion happens even when the item itself has no text.
func (e *Extractor) ProcessItem(item *markup.Node, pos Position, intro bool) []RuleLine {
	if e.IsExcluded(item) {
		return nil
	}

	self := pos
	numbered := true
	if intro {
		self, numbered = pos.Intro()
	}

	line := RuleLine{
		Text:      e.ExtractText(item, TextOptions{ExcludeNestedLists: true}),
		CrossRefs: e.CrossReferences(item),
		Intro:     intro,
	}
	if numbered {
		self.Numbered = true
		number := self.Number()
		line.Number = &number
	}

	var lines []RuleLine
	if !line.Empty() {
		lines = append(lines, line)
	}

	list := nestedList(item)
	if list == nil {
		return lines
	}
	return append(lines, e.numberList(list, self, self.Child)...)
}

// numberList numbers the items of a nested list. Intro items are placed
// relative to introAt; the k-th regular item (from 1) at next(k).
func (e *Extractor) numberList(list *markup.Node, introAt Position, next func(k int) Position) []RuleLine {
	if e.IsExcluded(list) {
		return nil
	}

	var lines []RuleLine
	counter := 0
	for i, item := range list.ChildElements("li") {
		switch e.Classify(item, ItemContext{FirstInList: i == 0}) {
		case ItemExcluded:
			continue
		case ItemIntro:
			lines = append(lines, e.ProcessItem(item, introAt, true)...)
		default:
			counter++
			lines = append(lines, e.ProcessItem(item, next(counter), false)...)
		}
	}
	return lines
}
