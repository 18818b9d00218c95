package extract

import (
	"regexp"
	"strings"

	"github.com/coolbeans/rulebook/pkg/markup"
)

// RefCategory indicates the kind of annotation a cross-reference link carries.
type RefCategory string

const (
	// CategoryAddendum marks a rule that adds to another rule (+).
	CategoryAddendum RefCategory = "addendum"
	// CategorySupersede marks a rule that replaces another rule (-).
	CategorySupersede RefCategory = "supersede"
)

// Sign returns the sign implied by the category.
func (c RefCategory) Sign() string {
	if c == CategorySupersede {
		return "-"
	}
	return "+"
}

// CrossReference is a signed pointer from one rule to another.
type CrossReference struct {
	Sign     string      `json:"sign"`
	Numeral  string      `json:"numeral"`
	Category RefCategory `json:"category"`
}

// String returns the normalized signed numeral, e.g. "+2.01.03".
func (r CrossReference) String() string {
	return r.Sign + r.Numeral
}

// ParseCrossReference finds the first dotted numeral in text. The sign comes
// from the text when present, otherwise from the category.
func ParseCrossReference(text string, category RefCategory) (CrossReference, bool) {
	return parseCrossReference(defaultRefPattern, text, category)
}

// defaultRefPattern matches "+2.01.03", "-3.01.11" or a bare "1.07",
// optionally with a typographic minus.
var defaultRefPattern = regexp.MustCompile(`([+\-\x{2212}]?\d+\.\d+(?:\.\d+)*)`)

func parseCrossReference(pattern *regexp.Regexp, text string, category RefCategory) (CrossReference, bool) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return CrossReference{}, false
	}

	ref := CrossReference{Category: category, Sign: category.Sign()}
	raw := m[1]
	switch {
	case strings.HasPrefix(raw, "+"):
		ref.Sign, raw = "+", raw[1:]
	case strings.HasPrefix(raw, "-"):
		ref.Sign, raw = "-", raw[1:]
	case strings.HasPrefix(raw, "−"):
		ref.Sign, raw = "-", strings.TrimPrefix(raw, "−")
	}
	ref.Numeral = raw
	return ref, true
}

// category returns the annotation category of a link, if any. Addendum wins
// when a link carries both classes.
func (e *Extractor) category(link *markup.Node) (RefCategory, bool) {
	switch {
	case e.vocab.AddendumClass != "" && link.HasClass(e.vocab.AddendumClass):
		return CategoryAddendum, true
	case e.vocab.SupersedeClass != "" && link.HasClass(e.vocab.SupersedeClass):
		return CategorySupersede, true
	default:
		return "", false
	}
}

// CrossReferences scans every descendant link of n for addendum and supersede
// annotations into the rules namespace. The result is in first-occurrence
// order with duplicate signed numerals removed.
func (e *Extractor) CrossReferences(n *markup.Node) []CrossReference {
	var refs []CrossReference
	seen := make(map[string]bool)

	for _, link := range n.Descendants("a") {
		category, ok := e.category(link)
		if !ok {
			continue
		}
		if e.IsExcluded(link) {
			continue
		}
		if !strings.Contains(link.AttrOr("href", ""), e.vocab.RulesHrefMarker) {
			continue
		}

		text := e.ExtractText(link, TextOptions{SkipLinks: true, ExcludeNestedLists: true})
		ref, ok := parseCrossReference(e.refPattern, text, category)
		if !ok {
			continue
		}
		if seen[ref.String()] {
			continue
		}
		seen[ref.String()] = true
		refs = append(refs, ref)
	}

	return refs
}

// ExtractCrossRefs returns the cross-references of n joined by spaces.
func (e *Extractor) ExtractCrossRefs(n *markup.Node) string {
	return joinCrossRefs(e.CrossReferences(n))
}

func joinCrossRefs(refs []CrossReference) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = ref.String()
	}
	return strings.Join(parts, " ")
}
