package extract

import (
	"fmt"
	"strconv"

	"github.com/coolbeans/rulebook/pkg/markup"
)

// SubsectionHeading opens a numbered subsection such as "1.02 Storm".
type SubsectionHeading struct {
	Section    string `json:"section"`
	Subsection string `json:"subsection"`
	Title      string `json:"title"`
}

// String renders "<section>.<subsection> <title>".
func (h SubsectionHeading) String() string {
	if h.Title == "" {
		return h.Section + "." + h.Subsection
	}
	return h.Section + "." + h.Subsection + " " + h.Title
}

// Entry is one element of a section body: a rule line or a subsection heading.
type Entry struct {
	Rule       *RuleLine          `json:"rule,omitempty"`
	Subsection *SubsectionHeading `json:"subsection,omitempty"`
}

// SectionResult is the numbered body of one top-level section.
type SectionResult struct {
	Numeral string  `json:"numeral"`
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// Rules returns the rule lines in emission order.
func (s *SectionResult) Rules() []RuleLine {
	var rules []RuleLine
	for _, entry := range s.Entries {
		if entry.Rule != nil {
			rules = append(rules, *entry.Rule)
		}
	}
	return rules
}

// ProcessSection numbers the main list of a top-level section. A section
// without a list, or whose list is hidden, yields only its title.
func (e *Extractor) ProcessSection(section *markup.Node, numeral string) *SectionResult {
	result := &SectionResult{Numeral: numeral}

	if h2 := section.Find("h2"); h2 != nil {
		result.Title = e.ExtractText(h2, TextOptions{SkipLinks: true, ExcludeNestedLists: true})
	}

	list := section.Find("ol")
	if list == nil || e.IsExcluded(list) {
		return result
	}

	w := &sectionWalker{
		extractor: e,
		numeral:   numeral,
		counter:   startNumber(list),
		result:    result,
	}
	w.walk(list.ChildElements("li"))
	return result
}

// startNumber reads the list's start attribute, defaulting to 1.
func startNumber(list *markup.Node) int {
	start, ok := list.Attr("start")
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(start)
	if err != nil || n < 0 || start[0] == '+' || start[0] == '-' {
		return 1
	}
	return n
}

// sectionWalker carries the per-section counter through one traversal.
type sectionWalker struct {
	extractor *Extractor
	numeral   string
	counter   int
	result    *SectionResult
}

func (w *sectionWalker) walk(items []*markup.Node) {
	e := w.extractor
	for _, item := range items {
		switch e.Classify(item, ItemContext{TopLevel: true}) {
		case ItemExcluded:
			continue
		case ItemSuppressed:
			w.unpack(item)
		case ItemSubsectionHeader:
			w.subsection(item)
		case ItemIntro:
			w.emit(e.ProcessItem(item, Position{Section: w.numeral}, true))
		default:
			w.emit(e.ProcessItem(item, Position{Section: w.numeral, Rule: w.counter}, false))
			w.counter++
		}
	}
}

// unpack numbers a suppressed container's list as part of the parent list.
// In the preface section the items are forced to <s>.00.00, <s>.00.01, ...
func (w *sectionWalker) unpack(item *markup.Node) {
	e := w.extractor
	list := nestedList(item)
	if list == nil || e.IsExcluded(list) {
		return
	}

	if w.numeral != ForcedPrefaceSection {
		w.walk(list.ChildElements("li"))
		return
	}

	k := 0
	for _, child := range list.ChildElements("li") {
		if e.IsExcluded(child) {
			continue
		}
		pos := Position{Section: w.numeral, Subsection: "00", Rule: k}
		w.emit(e.ProcessItem(child, pos, false))
		k++
	}
}

// subsection emits a subsection heading numbered by the parent counter and
// numbers its list with a fresh counter.
func (w *sectionWalker) subsection(item *markup.Node) {
	e := w.extractor
	heading := &SubsectionHeading{
		Section:    w.numeral,
		Subsection: fmt.Sprintf("%02d", w.counter),
		Title:      e.ExtractText(item.Find("h3"), TextOptions{SkipLinks: true, ExcludeNestedLists: true}),
	}
	w.counter++
	w.result.Entries = append(w.result.Entries, Entry{Subsection: heading})

	list := nestedList(item)
	if list == nil {
		return
	}
	base := Position{Section: heading.Section, Subsection: heading.Subsection}
	w.emit(e.numberList(list, base, func(k int) Position {
		pos := base
		pos.Rule = k
		return pos
	}))
}

func (w *sectionWalker) emit(lines []RuleLine) {
	for i := range lines {
		w.result.Entries = append(w.result.Entries, Entry{Rule: &lines[i]})
	}
}
